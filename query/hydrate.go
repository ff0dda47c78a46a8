package query

import (
	"database/sql"
	"reflect"
	"strconv"
	"time"

	"github.com/skuid/aliasql/decoding"
	"github.com/skuid/aliasql/errors"
	qp "github.com/skuid/aliasql/queryparts"
	"github.com/skuid/aliasql/tags"
)

var timeType = reflect.TypeOf(time.Time{})

/*
Hydrate takes the rows and pops each one into a freshly allocated model value,
in the order the rows were returned. This is usually called after you've built
and executed the query model. The returned values are structs of the model
type, never pointers, and never the instance the query was built from.

For example, if the query looks like:

	SELECT t0.product_id AS "t0.product_id", t0.product_name AS "t0.product_name"
	FROM products AS t0

and it returns:

	t0.product_id,	t0.product_name
	1,				"Chai"
	2,				"Chang"

Hydrate returns two Product values.
*/
func Hydrate(meta *tags.TableMetadata, aliasMap map[string]qp.FieldDescriptor, rows *sql.Rows) ([]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	byColumn := make(map[string]tags.FieldMetadata, len(cols))
	for _, field := range meta.GetFields() {
		byColumn[field.GetColumnName()] = field
	}

	models := make([]interface{}, 0)
	for rows.Next() {
		columns := make([]interface{}, len(cols))
		columnPointers := make([]interface{}, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		// Scan the result into the column pointers...
		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		model, err := hydrateModel(meta, aliasMap, byColumn, cols, columns)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return models, nil
}

/*
hydrateModel takes the values for one record and turns it into a struct based
on the aliasql tags
*/
func hydrateModel(
	meta *tags.TableMetadata,
	aliasMap map[string]qp.FieldDescriptor,
	byColumn map[string]tags.FieldMetadata,
	cols []string,
	values []interface{},
) (interface{}, error) {
	model := reflect.New(meta.GetModelType()).Elem()

	for i, colName := range cols {
		descriptor, ok := aliasMap[colName]
		if !ok {
			continue
		}
		field, ok := byColumn[descriptor.Column]
		if !ok {
			continue
		}
		if err := setField(model.FieldByIndex(field.GetIndex()), field, values[i]); err != nil {
			return nil, errors.Wrapf(err, "hydrating column '%s' of table '%s'", descriptor.Column, meta.GetTableName())
		}
	}

	return model.Interface(), nil
}

func setField(dest reflect.Value, field tags.FieldMetadata, value interface{}) error {
	if value == nil {
		return nil
	}

	if field.IsJSONB() {
		raw, ok := asText(value)
		if !ok {
			return errors.Errorf("expected jsonb text, got %T", value)
		}
		target := reflect.New(dest.Type())
		if err := decoding.GetDecoder(nil).Unmarshal([]byte(raw), target.Interface()); err != nil {
			return err
		}
		dest.Set(target.Elem())
		return nil
	}

	if dest.Kind() == reflect.Ptr {
		elem := reflect.New(dest.Type().Elem())
		if err := assign(elem.Elem(), value); err != nil {
			return err
		}
		dest.Set(elem)
		return nil
	}

	return assign(dest, value)
}

// assign converts the driver value into the destination's type. Drivers differ
// in what they hand back: sqlite stores booleans as integers, and postgres
// returns numerics as text.
func assign(dest reflect.Value, value interface{}) error {
	src := reflect.ValueOf(value)
	text, isText := asText(value)

	switch {
	case dest.Type() == timeType && isText:
		parsed, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return err
		}
		dest.Set(reflect.ValueOf(parsed))
		return nil
	case dest.Kind() == reflect.String:
		if isText {
			dest.SetString(text)
			return nil
		}
	case dest.Kind() == reflect.Bool:
		if isText {
			b, err := strconv.ParseBool(text)
			if err != nil {
				return err
			}
			dest.SetBool(b)
			return nil
		}
		if isInt(src.Kind()) {
			dest.SetBool(src.Int() != 0)
			return nil
		}
	case isInt(dest.Kind()):
		if isText {
			n, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return err
			}
			dest.SetInt(n)
			return nil
		}
	case isUint(dest.Kind()):
		if isText {
			n, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				return err
			}
			dest.SetUint(n)
			return nil
		}
	case dest.Kind() == reflect.Float32 || dest.Kind() == reflect.Float64:
		if isText {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return err
			}
			dest.SetFloat(f)
			return nil
		}
	case dest.Kind() == reflect.Slice && dest.Type().Elem().Kind() == reflect.Uint8:
		if b, ok := value.([]byte); ok {
			dest.SetBytes(append([]byte(nil), b...))
			return nil
		}
	}

	// Numbers are convertible to strings in Go, as runes, which is never what a
	// column holds.
	if dest.Kind() == reflect.String && src.Kind() != reflect.String {
		return errors.Errorf("can not assign %T to %s", value, dest.Type())
	}

	if src.Type().ConvertibleTo(dest.Type()) {
		dest.Set(src.Convert(dest.Type()))
		return nil
	}

	return errors.Errorf("can not assign %T to %s", value, dest.Type())
}

func asText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func isInt(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(kind reflect.Kind) bool {
	switch kind {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
