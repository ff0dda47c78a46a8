/*
Package tags generates table metadata by reading aliasql struct tag annotations.

A model is any struct that embeds metadata.Metadata and tags the fields that
map onto columns:

	type Product struct {
		Metadata     metadata.Metadata `aliasql:"tablename=products"`
		ProductID    int               `aliasql:"primary_key,column=product_id"`
		ProductName  string            `aliasql:"column=product_name"`
		Category     string            `aliasql:"column=category"`
		UnitPrice    float64           `aliasql:"column=unit_price,type=DECIMAL(10,2)"`
		UnitsInStock int               `aliasql:"column=units_in_stock"`
		Discontinued *bool             `aliasql:"column=discontinued"`
	}

Supported field tags:

	column:      the name of the column. Required, fields without it are not mapped.
	primary_key: the column is (part of) the primary key.
	nullable:    the column accepts NULL. Pointer fields are always nullable.
	type:        the declared SQL type. Inferred from the Go type when absent.
	jsonb:       the value is stored serialized as JSON.

Metadata for a type is built once and cached for the lifetime of the process;
see Register.
*/
package tags

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/modern-go/reflect2"
	"github.com/skuid/aliasql/errors"
	"github.com/skuid/aliasql/metadata"
	"github.com/skuid/aliasql/reflectutil"
	"github.com/skuid/aliasql/stringutil"
)

const aliasqlTagKey = "aliasql"

// FieldMetadata describes one mapped column of a model. It is immutable once built.
type FieldMetadata struct {
	name         string
	columnName   string
	sqlType      string
	isPrimaryKey bool
	isNullable   bool
	isJSONB      bool
	offset       uintptr
	index        []int
	fieldType    reflect.Type
}

// GetName returns the struct field name
func (fm FieldMetadata) GetName() string {
	return fm.name
}

// GetColumnName returns the column name
func (fm FieldMetadata) GetColumnName() string {
	return fm.columnName
}

// GetSQLType returns the declared SQL type of the column
func (fm FieldMetadata) GetSQLType() string {
	return fm.sqlType
}

// IsPrimaryKey function
func (fm FieldMetadata) IsPrimaryKey() bool {
	return fm.isPrimaryKey
}

// IsNullable function
func (fm FieldMetadata) IsNullable() bool {
	return fm.isNullable
}

// IsJSONB function
func (fm FieldMetadata) IsJSONB() bool {
	return fm.isJSONB
}

// GetOffset returns the byte offset of the field within its struct
func (fm FieldMetadata) GetOffset() uintptr {
	return fm.offset
}

// GetIndex returns the reflect index sequence of the field
func (fm FieldMetadata) GetIndex() []int {
	return fm.index
}

// GetFieldType function
func (fm FieldMetadata) GetFieldType() reflect.Type {
	return fm.fieldType
}

// TableMetadata structure
type TableMetadata struct {
	tableName  string
	modelType  reflect.Type
	fields     map[string]FieldMetadata
	fieldOrder []string
}

// GetTableName gets the name of the table
func (tm TableMetadata) GetTableName() string {
	return tm.tableName
}

// GetModelType returns the struct type the metadata was read from
func (tm TableMetadata) GetModelType() reflect.Type {
	return tm.modelType
}

// GetFields returns the fields in the order they appear in the struct
func (tm TableMetadata) GetFields() []FieldMetadata {
	fields := make([]FieldMetadata, 0, len(tm.fieldOrder))
	for _, key := range tm.fieldOrder {
		fields = append(fields, tm.fields[key])
	}
	return fields
}

// GetField returns the metadata for a struct field name
func (tm TableMetadata) GetField(fieldName string) (FieldMetadata, bool) {
	field, ok := tm.fields[fieldName]
	return field, ok
}

// GetColumnNames gets the column names
func (tm TableMetadata) GetColumnNames() []string {
	columnNames := make([]string, 0, len(tm.fieldOrder))
	for _, field := range tm.GetFields() {
		columnNames = append(columnNames, field.columnName)
	}
	return columnNames
}

// GetPrimaryKeyColumnNames gets the columns making up the primary key
func (tm TableMetadata) GetPrimaryKeyColumnNames() []string {
	columnNames := []string{}
	for _, field := range tm.GetFields() {
		if field.isPrimaryKey {
			columnNames = append(columnNames, field.columnName)
		}
	}
	return columnNames
}

/*
FieldByOffset finds the mapped field that starts at offset and has type typ.
The type check matters because the first field of a nested struct shares its
offset with the struct itself.
*/
func (tm TableMetadata) FieldByOffset(offset uintptr, typ reflect.Type) (FieldMetadata, error) {
	for _, key := range tm.fieldOrder {
		field := tm.fields[key]
		if field.offset == offset && field.fieldType == typ {
			return field, nil
		}
	}

	// Name the field if it exists on the struct but was never mapped to a column.
	fieldName := ""
	for i := 0; i < tm.modelType.NumField(); i++ {
		sf := tm.modelType.Field(i)
		if sf.Offset == offset && sf.Type == typ {
			fieldName = sf.Name
			break
		}
	}

	return FieldMetadata{}, errors.WithStack(&errors.UnmappedFieldError{
		Table: tm.tableName,
		Field: fieldName,
	})
}

var registry sync.Map

/*
Register returns the table metadata for a model. The model may be a struct, a
pointer to a struct, or a slice of either. Metadata is read from the struct tags
once per type, and is cached in a process wide, append only registry, so it can
be read from any number of goroutines.
*/
func Register(model interface{}) (*TableMetadata, error) {
	if model == nil {
		return nil, errors.New(errors.ErrInvalidModel, "models must be structs, got nil")
	}

	key := reflect2.RTypeOf(model)
	if cached, ok := registry.Load(key); ok {
		return cached.(*TableMetadata), nil
	}

	structType, ok := reflectutil.StructType(reflect.TypeOf(model))
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidModel, "models must be structs, got %T", model)
	}

	// Pointers, slices and the bare struct all share the struct's entry.
	structKey := reflect2.Type2(structType).RType()
	actual, _ := registry.LoadOrStore(structKey, TableMetadataFromType(structType))
	registry.Store(key, actual)
	return actual.(*TableMetadata), nil
}

// TableMetadataFromType gets table metadata from a reflect type
func TableMetadataFromType(t reflect.Type) *TableMetadata {
	tableMetadata := TableMetadata{
		tableName: stringutil.ToSnakeCase(t.Name()),
		modelType: t,
		fields:    map[string]FieldMetadata{},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tagsMap := GetStructTagsMap(field, aliasqlTagKey)

		if metadata.IsMetadataField(field) {
			if tableName, hasTableName := tagsMap["tablename"]; hasTableName && tableName != "" {
				tableMetadata.tableName = tableName
			}
			continue
		}

		columnName, hasColumnName := tagsMap["column"]
		if !hasColumnName || columnName == "" {
			continue
		}

		_, isPrimaryKey := tagsMap["primary_key"]
		_, isNullable := tagsMap["nullable"]
		_, isJSONB := tagsMap["jsonb"]
		sqlType, hasSQLType := tagsMap["type"]

		if field.Type.Kind() == reflect.Ptr {
			isNullable = true
		}
		if !hasSQLType || sqlType == "" {
			sqlType = inferSQLType(field.Type, isJSONB)
		}

		tableMetadata.fields[field.Name] = FieldMetadata{
			name:         field.Name,
			columnName:   columnName,
			sqlType:      sqlType,
			isPrimaryKey: isPrimaryKey,
			isNullable:   isNullable && !isPrimaryKey,
			isJSONB:      isJSONB,
			offset:       field.Offset,
			index:        field.Index,
			fieldType:    field.Type,
		}

		tableMetadata.fieldOrder = append(tableMetadata.fieldOrder, field.Name)
	}

	return &tableMetadata
}

var timeType = reflect.TypeOf(time.Time{})

func inferSQLType(t reflect.Type, isJSONB bool) string {
	if isJSONB {
		return "JSONB"
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return "TIMESTAMP"
	}

	switch t.Kind() {
	case reflect.String:
		return "VARCHAR"
	case reflect.Bool:
		return "BOOLEAN"
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return "INTEGER"
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return "BIGINT"
	case reflect.Float32, reflect.Float64:
		return "DOUBLE PRECISION"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "BYTEA"
		}
	}
	return "VARCHAR"
}

// GetStructTagsMap generates a map of struct tag to values
// Example
// 	input: testKeyOne=test_value_one,testKeyTwo=test_value_two
// 	output: map[string]string{"testKeyOne": "test_value_one", "testKeyTwo": "test_value_two"
//
// Values may contain commas when they are wrapped in parentheses, so
// type=DECIMAL(10,2) is read as a single value.
func GetStructTagsMap(field reflect.StructField, tagType string) map[string]string {
	tagValue := field.Tag.Get(tagType)
	if tagValue == "" {
		return nil
	}

	tagsMap := map[string]string{}

	for _, v := range splitTag(tagValue) {
		tagSplit := strings.SplitN(v, "=", 2)
		tagKey := strings.TrimSpace(tagSplit[0])
		tagValue := ""
		if (len(tagSplit)) == 2 {
			tagValue = strings.TrimSpace(tagSplit[1])
		}
		tagsMap[tagKey] = tagValue
	}

	return tagsMap
}

func splitTag(tag string) []string {
	parts := []string{}
	depth := 0
	start := 0
	for i, r := range tag {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, tag[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, tag[start:])
}
