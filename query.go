package aliasql

import (
	"context"

	"github.com/skuid/aliasql/alias"
	"github.com/skuid/aliasql/errors"
	"github.com/skuid/aliasql/query"
	qp "github.com/skuid/aliasql/queryparts"
	"go.uber.org/zap"
)

/*
Query builds a select against the table of T. Fields are referenced through
the instance the query was created from:

	p := &Product{}
	products, err := aliasql.From(db, p).
		Where(&p.Category).Is("Condiments").
		And(&p.UnitsInStock).Exceeds(0).
		OrderBy(&p.ProductName).
		Select(ctx)

A query binds its instance when it is created and keeps the binding until it is
executed or closed. The first error stops the chain: every later call is a
no-op and Select or SelectCount return the error. A query can only be
executed once.
*/
type Query[T any] struct {
	db       *Db
	model    *T
	context  *alias.Context
	table    *qp.Table
	open     bool
	executed bool
	err      error
}

// Condition is a predicate waiting for its comparison
type Condition[T any] struct {
	query *Query[T]
	token qp.FieldDescriptor
	done  bool
}

// From binds model to a new query against db
func From[T any](db *Db, model *T) *Query[T] {
	q := &Query[T]{
		db:    db,
		model: model,
	}

	c, err := db.binder.Bind(model)
	if err != nil {
		q.err = err
		return q
	}

	q.context = c
	q.table = query.BuildAliased(c.Table(), c.Alias(), db.dialect.Placeholder)
	return q
}

// Where starts a predicate on the field fieldPtr points at
func (q *Query[T]) Where(fieldPtr interface{}) *Condition[T] {
	if !q.usable() {
		return &Condition[T]{query: q, done: true}
	}

	if q.open {
		q.abort(errors.New(errors.ErrIncompletePredicate, "a new predicate was started before the previous one was compared"))
		return &Condition[T]{query: q, done: true}
	}

	token, err := q.context.Resolve(fieldPtr)
	if err != nil {
		q.abort(err)
		return &Condition[T]{query: q, done: true}
	}

	q.open = true
	return &Condition[T]{query: q, token: token}
}

// And starts another predicate, ANDed with the previous ones
func (q *Query[T]) And(fieldPtr interface{}) *Condition[T] {
	return q.Where(fieldPtr)
}

// OrderBy orders the results by the field fieldPtr points at, ascending
func (q *Query[T]) OrderBy(fieldPtr interface{}) *Query[T] {
	return q.orderBy(fieldPtr, false)
}

// OrderByDesc orders the results by the field fieldPtr points at, descending
func (q *Query[T]) OrderByDesc(fieldPtr interface{}) *Query[T] {
	return q.orderBy(fieldPtr, true)
}

func (q *Query[T]) orderBy(fieldPtr interface{}, descending bool) *Query[T] {
	if !q.usable() {
		return q
	}

	token, err := q.context.Resolve(fieldPtr)
	if err != nil {
		q.abort(err)
		return q
	}

	q.table.AddOrderBy(token, descending)
	return q
}

// Limit caps the number of rows Select returns. Zero means no limit.
func (q *Query[T]) Limit(limit uint64) *Query[T] {
	if q.usable() {
		q.table.Limit = limit
	}
	return q
}

// ToSQL returns the select statement as it currently stands
func (q *Query[T]) ToSQL() (string, []interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	return q.table.ToSQL()
}

/*
Select executes the query and returns every matching row, each materialized
into a new T. The instance the query was built from is never written to.
*/
func (q *Query[T]) Select(ctx context.Context) ([]T, error) {
	if err := q.execute(); err != nil {
		return nil, err
	}
	defer q.context.Release()

	models, err := q.db.Execute(ctx, q.table, q.context.Table())
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(models))
	for _, model := range models {
		results = append(results, model.(T))
	}
	return results, nil
}

// SelectCount executes the query and returns the number of matching rows
func (q *Query[T]) SelectCount(ctx context.Context) (int64, error) {
	if err := q.execute(); err != nil {
		return 0, err
	}
	defer q.context.Release()

	return q.db.Count(ctx, q.table)
}

// Err returns the error that stopped the query, if any
func (q *Query[T]) Err() error {
	return q.err
}

// Close releases the query's binding without executing it. A closed query
// can not be executed.
func (q *Query[T]) Close() {
	if q.context != nil {
		q.context.Release()
	}
	q.executed = true
}

func (q *Query[T]) usable() bool {
	if q.executed {
		if q.err == nil {
			q.err = errors.New(errors.ErrQueryExecuted, "query has already been executed")
		}
		return false
	}
	return q.err == nil
}

// execute moves the query into its terminal state. It returns the error that
// stops execution, if any.
func (q *Query[T]) execute() error {
	if q.executed {
		return errors.New(errors.ErrQueryExecuted, "query has already been executed")
	}
	q.executed = true

	if q.err != nil {
		return q.err
	}

	if q.open {
		q.abort(errors.New(errors.ErrIncompletePredicate, "query executed with a predicate that has no comparison"))
		return q.err
	}

	return nil
}

// abort stores err, drops every predicate and gives up the binding
func (q *Query[T]) abort(err error) {
	q.err = err
	q.open = false
	if q.table != nil {
		q.table.ClearWheres()
	}
	if q.context != nil {
		q.context.Release()
		q.db.logger.Debug(
			"query aborted",
			zap.String("table", q.context.Table().GetTableName()),
			zap.String("context", q.context.ID()),
			zap.Error(err),
		)
	}
}

// Is compares the field for equality. Is(nil) matches NULL.
func (c *Condition[T]) Is(value interface{}) *Query[T] {
	return c.compare(qp.OpEq, value)
}

// IsNot compares the field for inequality
func (c *Condition[T]) IsNot(value interface{}) *Query[T] {
	return c.compare(qp.OpNotEq, value)
}

// Like matches the field against a LIKE pattern
func (c *Condition[T]) Like(pattern string) *Query[T] {
	return c.compare(qp.OpLike, pattern)
}

// Exceeds matches values greater than threshold
func (c *Condition[T]) Exceeds(threshold interface{}) *Query[T] {
	return c.compare(qp.OpGt, threshold)
}

// AtLeast matches values greater than or equal to threshold
func (c *Condition[T]) AtLeast(threshold interface{}) *Query[T] {
	return c.compare(qp.OpGtOrEq, threshold)
}

// Below matches values less than threshold
func (c *Condition[T]) Below(threshold interface{}) *Query[T] {
	return c.compare(qp.OpLt, threshold)
}

// AtMost matches values less than or equal to threshold
func (c *Condition[T]) AtMost(threshold interface{}) *Query[T] {
	return c.compare(qp.OpLtOrEq, threshold)
}

// IsNull matches NULL columns
func (c *Condition[T]) IsNull() *Query[T] {
	return c.compare(qp.OpIsNull, nil)
}

// IsNotNull matches columns that are not NULL
func (c *Condition[T]) IsNotNull() *Query[T] {
	return c.compare(qp.OpIsNotNull, nil)
}

func (c *Condition[T]) compare(op qp.Operator, value interface{}) *Query[T] {
	q := c.query
	if c.done || !q.usable() {
		return q
	}
	c.done = true

	if err := q.table.AddWhere(qp.Where{Field: c.token, Op: op, Val: value}); err != nil {
		q.abort(err)
		return q
	}

	q.open = false
	return q
}
