package queryparts

import (
	"fmt"

	sql "github.com/Masterminds/squirrel"
	"github.com/skuid/aliasql/stringutil"
)

const (
	aliasedCol   string = "%[1]v.%[2]v AS \"%[1]v.%[2]v\""
	aliasedTable string = "%s AS %s"
)

/*
Table represents a select, and is the root of the structure. Start here to build
a query by calling
	tbl := New("my_table")
*/
type Table struct {
	Alias       string
	Name        string
	columns     []string
	Wheres      sql.And
	OrderBy     []OrderByRequest
	Limit       uint64
	Placeholder sql.PlaceholderFormat
}

/*
New returns a new table.
*/
func New(name string) *Table {
	index := 0
	return NewAliased(name, stringutil.GenerateTableAlias(&index))
}

// NewAliased returns a new table with the given alias
func NewAliased(name string, alias string) *Table {
	return &Table{
		Alias:       alias,
		Name:        name,
		columns:     make([]string, 0),
		Placeholder: sql.Dollar,
	}
}

/*
AddColumns adds an array of columns to the current table, adding the aliases
*/
func (t *Table) AddColumns(cols []string) {
	t.columns = append(t.columns, cols...)
}

/*
AddWhere adds one resolved predicate, ANDed with the ones already present
*/
func (t *Table) AddWhere(where Where) error {
	sqlizer, err := where.Sqlizer()
	if err != nil {
		return err
	}
	t.Wheres = append(t.Wheres, sqlizer)
	return nil
}

// ClearWheres drops every predicate added so far
func (t *Table) ClearWheres() {
	t.Wheres = nil
}

// AddOrderBy appends an ordering term
func (t *Table) AddOrderBy(field FieldDescriptor, descending bool) {
	t.OrderBy = append(t.OrderBy, OrderByRequest{
		Field:      field,
		Descending: descending,
	})
}

/*
Columns gets the columns including the proper alias
*/
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(t.columns))

	for _, col := range t.columns {
		cols = append(cols, fmt.Sprintf(aliasedCol, t.Alias, col))
	}

	return cols
}

/*
FieldAliases returns a map of all selected columns, keyed by the name the
column is returned under, so rows can be mapped back onto model fields.
*/
func (t *Table) FieldAliases() map[string]FieldDescriptor {
	aliasMap := make(map[string]FieldDescriptor)
	for _, col := range t.columns {
		aliasMap[fmt.Sprintf(AliasedField, t.Alias, col)] = FieldDescriptor{
			Alias:  t.Alias,
			Table:  t.Name,
			Column: col,
		}
	}
	return aliasMap
}

/*
ToSQL returns the SQL statement, as it currently stands.
*/
func (t *Table) ToSQL() (string, []interface{}, error) {
	return t.BuildSQL().ToSql()
}

/*
BuildSQL returns a squirrel SelectBuilder, which can be used to execute the query
or to just add more to the query
*/
func (t *Table) BuildSQL() sql.SelectBuilder {
	bld := t.from(sql.Select(t.Columns()...))

	for _, order := range t.OrderBy {
		bld = bld.OrderBy(order.String())
	}

	if t.Limit > 0 {
		bld = bld.Limit(t.Limit)
	}

	return bld
}

/*
CountSQL returns a squirrel SelectBuilder counting the rows the select would
return. Ordering and limits are left off.
*/
func (t *Table) CountSQL() sql.SelectBuilder {
	return t.from(sql.Select("COUNT(*)"))
}

func (t *Table) from(bld sql.SelectBuilder) sql.SelectBuilder {
	placeholder := t.Placeholder
	if placeholder == nil {
		placeholder = sql.Dollar
	}

	bld = bld.
		PlaceholderFormat(placeholder).
		From(fmt.Sprintf(aliasedTable, t.Name, t.Alias))

	for _, where := range t.Wheres {
		bld = bld.Where(where)
	}

	return bld
}
