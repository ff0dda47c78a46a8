package aliasql

import (
	"fmt"
)

// QueryError holds additional information about an SQL query failure
type QueryError struct {
	Err   error
	Query string
}

/*
NewQueryError returns a new QueryError object, populated with
extra information about which query failed
*/
func NewQueryError(err error, query string) *QueryError {
	return &QueryError{
		Err:   err,
		Query: query,
	}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: Query: %s", e.Err, e.Query)
}

// Cause returns the driver error, for errors.Cause
func (e *QueryError) Cause() error {
	return e.Err
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
