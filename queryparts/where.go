package queryparts

import (
	"fmt"

	sql "github.com/Masterminds/squirrel"
)

// Operator is the comparison a Where applies between a column and a value
type Operator string

// Supported comparisons
const (
	OpEq        Operator = "="
	OpNotEq     Operator = "<>"
	OpLike      Operator = "LIKE"
	OpGt        Operator = ">"
	OpGtOrEq    Operator = ">="
	OpLt        Operator = "<"
	OpLtOrEq    Operator = "<="
	OpIsNull    Operator = "IS NULL"
	OpIsNotNull Operator = "IS NOT NULL"
)

/*
Where holds a single resolved predicate: a column token, the comparison and
the literal it is compared against.
*/
type Where struct {
	Field FieldDescriptor
	Op    Operator
	Val   interface{}
}

/*
Sqlizer turns the predicate into its squirrel expression, so it can be added
to a select, a count or a delete.
*/
func (w Where) Sqlizer() (sql.Sqlizer, error) {
	col := w.Field.String()

	switch w.Op {
	case OpEq:
		return sql.Eq{col: w.Val}, nil
	case OpNotEq:
		return sql.NotEq{col: w.Val}, nil
	case OpLike:
		return sql.Like{col: w.Val}, nil
	case OpGt:
		return sql.Gt{col: w.Val}, nil
	case OpGtOrEq:
		return sql.GtOrEq{col: w.Val}, nil
	case OpLt:
		return sql.Lt{col: w.Val}, nil
	case OpLtOrEq:
		return sql.LtOrEq{col: w.Val}, nil
	case OpIsNull:
		return sql.Eq{col: nil}, nil
	case OpIsNotNull:
		return sql.NotEq{col: nil}, nil
	}

	return nil, fmt.Errorf("unsupported operator '%s' on %s", w.Op, col)
}
