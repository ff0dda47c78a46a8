/*
Package aliasqltest provides mocks for client code that depends on aliasql.ORM.
*/
package aliasqltest

import (
	"context"
	"errors"
)

// MockORM can be used to test client functionality that calls aliasql.ORM behavior.
type MockORM struct {
	CreateTableError      error
	CreateTableCalledWith []interface{}
	DropTableError        error
	DropTableCalledWith   []interface{}
	InsertAllError        error
	InsertAllCalledWith   interface{}
	CloseError            error
	Closed                bool
}

// CreateTable returns the error stored in MockORM, and records the call value
func (morm *MockORM) CreateTable(ctx context.Context, model interface{}) error {
	morm.CreateTableCalledWith = append(morm.CreateTableCalledWith, model)
	return morm.CreateTableError
}

// DropTable returns the error stored in MockORM, and records the call value
func (morm *MockORM) DropTable(ctx context.Context, model interface{}) error {
	morm.DropTableCalledWith = append(morm.DropTableCalledWith, model)
	return morm.DropTableError
}

// InsertAll returns the error stored in MockORM, and records the call value
func (morm *MockORM) InsertAll(ctx context.Context, models interface{}) error {
	morm.InsertAllCalledWith = models
	return morm.InsertAllError
}

// Close returns the error stored in MockORM
func (morm *MockORM) Close() error {
	morm.Closed = true
	return morm.CloseError
}

// MultiMockORM can be used to string together a series of calls to aliasql.ORM
type MultiMockORM struct {
	MockORMs []MockORM
	index    int
}

// Returns the next mock in the series of mocks
func (multi *MultiMockORM) next() (*MockORM, error) {
	currentIndex := multi.index
	if len(multi.MockORMs) > currentIndex {
		multi.index = multi.index + 1
		return &multi.MockORMs[currentIndex], nil
	}
	return nil, errors.New("Mock Function was called but not expected")
}

// CreateTable returns the error stored in the next MockORM, and records the call value
func (multi *MultiMockORM) CreateTable(ctx context.Context, model interface{}) error {
	next, err := multi.next()
	if err != nil {
		return err
	}
	return next.CreateTable(ctx, model)
}

// DropTable returns the error stored in the next MockORM, and records the call value
func (multi *MultiMockORM) DropTable(ctx context.Context, model interface{}) error {
	next, err := multi.next()
	if err != nil {
		return err
	}
	return next.DropTable(ctx, model)
}

// InsertAll returns the error stored in the next MockORM, and records the call value
func (multi *MultiMockORM) InsertAll(ctx context.Context, models interface{}) error {
	next, err := multi.next()
	if err != nil {
		return err
	}
	return next.InsertAll(ctx, models)
}

// Close returns the error stored in the next MockORM
func (multi *MultiMockORM) Close() error {
	next, err := multi.next()
	if err != nil {
		return err
	}
	return next.Close()
}
