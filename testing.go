package aliasql

import (
	"database/sql/driver"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/skuid/aliasql/decoding"
	"github.com/skuid/aliasql/tags"
)

// LoadFixturesFromFiles creates a slice of structs from a slice of file names.
// Model fields without a json tag are read by their column name.
func LoadFixturesFromFiles(names []string, path string, loadType reflect.Type) (interface{}, error) {

	sliceOfStructs := reflect.New(reflect.SliceOf(loadType)).Elem()

	for _, name := range names {
		testObject := reflect.New(loadType).Interface()
		raw, err := os.ReadFile(filepath.Join(path, name+".json"))
		if err != nil {
			return nil, err
		}
		err = decoding.GetDecoder(nil).Unmarshal(raw, testObject)
		if err != nil {
			return nil, err
		}
		sliceOfStructs = reflect.Append(sliceOfStructs, reflect.ValueOf(testObject).Elem())
	}

	return sliceOfStructs.Interface(), nil
}

// ExpectationHelper struct that contains expectations about a particular object
type ExpectationHelper struct {
	TableName  string
	DBColumns  []string
	DataFields []string
}

// NewExpectationHelper fills in an ExpectationHelper from a model's tags
func NewExpectationHelper(model interface{}) (ExpectationHelper, error) {
	meta, err := tags.Register(model)
	if err != nil {
		return ExpectationHelper{}, err
	}

	expect := ExpectationHelper{
		TableName: meta.GetTableName(),
	}
	for _, field := range meta.GetFields() {
		expect.DBColumns = append(expect.DBColumns, field.GetColumnName())
		expect.DataFields = append(expect.DataFields, field.GetName())
	}
	return expect, nil
}

func getTestColumnValues(expect ExpectationHelper, object reflect.Value) []driver.Value {
	values := []driver.Value{}

	meta, _ := tags.Register(object.Interface())

	for _, dataField := range expect.DataFields {
		field := reflect.Indirect(object).FieldByName(dataField)
		if meta != nil {
			if fieldMeta, ok := meta.GetField(dataField); ok && fieldMeta.IsJSONB() {
				encoded, _ := decoding.GetDecoder(nil).MarshalToString(field.Interface())
				values = append(values, encoded)
				continue
			}
		}
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				values = append(values, nil)
				continue
			}
			field = field.Elem()
		}
		values = append(values, field.Interface())
	}

	return values
}

// ExpectInsert Mocks an InsertAll of objects, a slice of models, using
// postgres placeholders.
func ExpectInsert(mock sqlmock.Sqlmock, expect ExpectationHelper, objects interface{}) {

	valueStrings := []string{}
	index := 1
	expectedArgs := []driver.Value{}

	if objects != nil {
		s := reflect.ValueOf(objects)
		for i := 0; i < s.Len(); i++ {
			object := s.Index(i)

			valueParams := []string{}

			for range expect.DBColumns {
				valueParams = append(valueParams, `\$`+strconv.Itoa(index))
				index++
			}

			expectedArgs = append(expectedArgs, getTestColumnValues(expect, object)...)
			valueStrings = append(valueStrings, strings.Join(valueParams, ","))
		}
	}

	expectSQL := `^INSERT INTO ` + expect.TableName + ` ` +
		`\(` + strings.Join(expect.DBColumns, ",") + `\) ` +
		`VALUES \(` + strings.Join(valueStrings, `\),\(`) + `\)$`

	mock.ExpectBegin()
	mock.ExpectExec(expectSQL).WithArgs(expectedArgs...).WillReturnResult(sqlmock.NewResult(0, int64(len(valueStrings))))
	mock.ExpectCommit()
}

// ExpectSelect Mocks a Select of the table, returning objects as rows
func ExpectSelect(mock sqlmock.Sqlmock, expect ExpectationHelper, objects interface{}) *sqlmock.ExpectedQuery {
	columns := make([]string, 0, len(expect.DBColumns))
	for _, column := range expect.DBColumns {
		columns = append(columns, "t0."+column)
	}

	returnRows := sqlmock.NewRows(columns)
	if objects != nil {
		s := reflect.ValueOf(objects)
		for i := 0; i < s.Len(); i++ {
			returnRows.AddRow(getTestColumnValues(expect, s.Index(i))...)
		}
	}

	return mock.ExpectQuery(`^SELECT .* FROM ` + expect.TableName + ` AS t0`).WillReturnRows(returnRows)
}

// ExpectCount Mocks a SelectCount of the table, returning count
func ExpectCount(mock sqlmock.Sqlmock, expect ExpectationHelper, count int64) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM ` + expect.TableName + ` AS t0`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}
