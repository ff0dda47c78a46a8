package alias

import (
	"reflect"

	qp "github.com/skuid/aliasql/queryparts"
	"github.com/skuid/aliasql/tags"
)

// Context is the binding of one instance to one query.
type Context struct {
	id     string
	alias  string
	binder *Binder
	base   reflect.Value
	key    instanceKey
	meta   *tags.TableMetadata
}

// ID returns the unique id of the context
func (c *Context) ID() string {
	return c.id
}

// Alias returns the table alias the context's columns are qualified with
func (c *Context) Alias() string {
	return c.alias
}

// Table returns the metadata of the bound model
func (c *Context) Table() *tags.TableMetadata {
	return c.meta
}

// Active reports whether the context is still the one installed for its instance
func (c *Context) Active() bool {
	return c.binder.isActive(c)
}

// Resolve is shorthand for Binder.Resolve
func (c *Context) Resolve(fieldPtr interface{}) (qp.FieldDescriptor, error) {
	return c.binder.Resolve(c, fieldPtr)
}

// Release is shorthand for Binder.Release
func (c *Context) Release() {
	c.binder.Release(c)
}
