/*
Package alias binds model instances to the query that is currently building
against them.

A field reference in aliasql is a pointer to a field of a bound instance:

	p := &Product{}
	c, _ := alias.DefaultBinder.Bind(p)
	token, err := c.Resolve(&p.Category) // t0.category

Only one context may be active for an instance at a time. Binding the same
instance again displaces the earlier context, and every later resolution
through the displaced context fails with an UnmappedFieldError whose Displaced
flag is set. Instances must therefore never be shared between queries that
build concurrently. Use a fresh instance per query, or confine one instance
per goroutine with Local.
*/
package alias

import (
	"reflect"
	"runtime"
	"sync"

	uuid "github.com/satori/go.uuid"
	"github.com/skuid/aliasql/errors"
	qp "github.com/skuid/aliasql/queryparts"
	"github.com/skuid/aliasql/reflectutil"
	"github.com/skuid/aliasql/stringutil"
	"github.com/skuid/aliasql/tags"
	"go.uber.org/zap"
)

// DefaultBinder is the process wide binder used by every Db that is not
// given one of its own.
var DefaultBinder = NewBinder(nil)

// instanceKey identifies a bound instance. The type is part of the key because
// a struct and its first field share an address.
type instanceKey struct {
	addr uintptr
	typ  reflect.Type
}

/*
Binder tracks the active alias context of every bound instance. Only context ids
are stored, so a query that is dropped without being executed or closed does not
pin its context. The context's finalizer releases the entry once it is collected.
*/
type Binder struct {
	mu     sync.Mutex
	active map[instanceKey]string
	logger *zap.Logger
}

// NewBinder returns an empty binder. A nil logger logs through zap.L().
func NewBinder(logger *zap.Logger) *Binder {
	return &Binder{
		active: make(map[instanceKey]string),
		logger: logger,
	}
}

func (b *Binder) log() *zap.Logger {
	if b.logger != nil {
		return b.logger
	}
	return zap.L()
}

/*
Bind creates a new alias context for model, which must be a non-nil pointer to
a struct, and installs it as the instance's active context. Any context that
was active for the same instance is displaced.
*/
func (b *Binder) Bind(model interface{}) (*Context, error) {
	base, ok := reflectutil.StructPointer(model)
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidModel, "models must be bound through a non-nil pointer to a struct, got %T", model)
	}

	meta, err := tags.Register(model)
	if err != nil {
		return nil, err
	}

	counter := 0
	c := &Context{
		id:     uuid.NewV4().String(),
		alias:  stringutil.GenerateTableAlias(&counter),
		binder: b,
		base:   base,
		key:    instanceKey{addr: base.UnsafeAddr(), typ: base.Type()},
		meta:   meta,
	}

	b.mu.Lock()
	previous, displaced := b.active[c.key]
	b.active[c.key] = c.id
	b.mu.Unlock()

	runtime.SetFinalizer(c, (*Context).Release)

	if displaced {
		b.log().Debug(
			"alias context displaced",
			zap.String("table", meta.GetTableName()),
			zap.String("displaced", previous),
			zap.String("active", c.id),
		)
	}

	return c, nil
}

/*
Resolve returns the column token fieldPtr is bound to in c. It fails with an
UnmappedFieldError when c is no longer the active context for its instance,
when fieldPtr does not point into the instance, or when the field it points at
is not mapped to a column.
*/
func (b *Binder) Resolve(c *Context, fieldPtr interface{}) (qp.FieldDescriptor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active[c.key] != c.id {
		return qp.FieldDescriptor{}, errors.WithStack(&errors.UnmappedFieldError{
			Table:     c.meta.GetTableName(),
			Context:   c.id,
			Displaced: true,
		})
	}

	offset, typ, ok := reflectutil.FieldOffset(c.base, fieldPtr)
	if !ok {
		return qp.FieldDescriptor{}, errors.WithStack(&errors.UnmappedFieldError{
			Table:   c.meta.GetTableName(),
			Context: c.id,
		})
	}

	field, err := c.meta.FieldByOffset(offset, typ)
	if err != nil {
		return qp.FieldDescriptor{}, err
	}

	return qp.FieldDescriptor{
		Alias:  c.alias,
		Table:  c.meta.GetTableName(),
		Column: field.GetColumnName(),
	}, nil
}

// Release detaches c if it is still the active context for its instance.
func (b *Binder) Release(c *Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active[c.key] == c.id {
		delete(b.active, c.key)
	}
}

func (b *Binder) isActive(c *Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active[c.key] == c.id
}

// Len returns the number of instances with an active context
func (b *Binder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}
