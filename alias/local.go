package alias

import (
	"context"
	"fmt"
)

type localKey struct {
	name string
}

/*
Local confines model instances to a context.Context, so each goroutine that
attaches its own context resolves fields through its own instance:

	products := alias.NewLocal[Product]()

	go func() {
		ctx := products.Attach(ctx)
		p := products.Get(ctx)
		...
	}()
*/
type Local[T any] struct {
	key *localKey
}

// NewLocal returns a new, empty Local
func NewLocal[T any]() *Local[T] {
	var zero T
	return &Local[T]{
		key: &localKey{name: fmt.Sprintf("%T", zero)},
	}
}

// Attach returns a copy of ctx holding a new instance of T
func (l *Local[T]) Attach(ctx context.Context) context.Context {
	return l.With(ctx, new(T))
}

// With returns a copy of ctx holding model
func (l *Local[T]) With(ctx context.Context, model *T) context.Context {
	return context.WithValue(ctx, l.key, model)
}

// Get returns the instance attached to ctx. When nothing is attached it
// returns a new instance, which is never shared.
func (l *Local[T]) Get(ctx context.Context) *T {
	if model, ok := ctx.Value(l.key).(*T); ok && model != nil {
		return model
	}
	return new(T)
}
