/*
Package query turns table metadata into select statements and maps the rows
those statements return back onto fresh model values.
*/
package query

import (
	sql "github.com/Masterminds/squirrel"
	qp "github.com/skuid/aliasql/queryparts"
	"github.com/skuid/aliasql/stringutil"
	"github.com/skuid/aliasql/tags"
)

/*
Build takes the table metadata of a model and returns a table selecting every
mapped column, aliased as t0. Predicates are added to the returned table as
field references are resolved.
*/
func Build(meta *tags.TableMetadata, placeholder sql.PlaceholderFormat) *qp.Table {
	counter := 0
	return BuildAliased(meta, stringutil.GenerateTableAlias(&counter), placeholder)
}

// BuildAliased is Build with an explicit table alias
func BuildAliased(meta *tags.TableMetadata, alias string, placeholder sql.PlaceholderFormat) *qp.Table {
	tbl := qp.NewAliased(meta.GetTableName(), alias)
	if placeholder != nil {
		tbl.Placeholder = placeholder
	}
	tbl.AddColumns(meta.GetColumnNames())
	return tbl
}
