// Package errors wraps pkg/errors and adds stable error codes, so callers can
// tell an expected alias displacement apart from a genuine failure without
// matching on message text.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is an error code which can be used to check against a given error.
// See Is.
type Code string

const (
	// ErrUnmappedField is raised when a field reference has no column binding
	// in the active alias context. Either the field was never declared as a
	// column, or the context the query owns has been displaced.
	ErrUnmappedField Code = "UNMAPPED_FIELD"

	// ErrInvalidModel is raised when something other than a struct (or a
	// pointer/slice of structs) is used as a model.
	ErrInvalidModel Code = "INVALID_MODEL"

	// ErrQueryExecuted is raised when a query is used after Select or
	// SelectCount.
	ErrQueryExecuted Code = "QUERY_EXECUTED"

	// ErrIncompletePredicate is raised when a query is executed while a
	// Where has not been closed by a comparison.
	ErrIncompletePredicate Code = "INCOMPLETE_PREDICATE"

	// ErrUnsupportedDialect is raised for drivers aliasql has no dialect for.
	ErrUnsupportedDialect Code = "UNSUPPORTED_DIALECT"
)

// New returns a coded error with a stack attached.
func New(code Code, message string) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
	})
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...interface{}) error {
	return New(code, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain carries the target code.
func Is(err error, target Code) bool {
	return errors.Is(err, codedError{Code: target})
}

// CodeOf returns the code of the first coded error in err's chain, or the
// empty code.
func CodeOf(err error) Code {
	var coder interface{ ErrorCode() Code }
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Cause(err error) error {
	return errors.Cause(err)
}

func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

func WithStack(err error) error {
	return errors.WithStack(err)
}

func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// codedError is the fundamental type used by this package to provide coded
// errors.
type codedError struct {
	Code    Code
	Message string
}

func (ce codedError) Error() string {
	return ce.Message
}

func (ce codedError) ErrorCode() Code {
	return ce.Code
}

func (ce codedError) Is(err error) bool {
	if e, ok := err.(codedError); ok && ce.Code == e.Code {
		return true
	}
	return false
}

// UnmappedFieldError is returned when a field reference cannot be resolved to
// a column of the query it was used in.
type UnmappedFieldError struct {
	Table string
	Field string
	// Context is the id of the alias context the caller believed it owned.
	Context string
	// Displaced is true when the field is mapped, but the caller's alias
	// context is no longer the active one for the instance.
	Displaced bool
}

func (e *UnmappedFieldError) Error() string {
	if e.Displaced {
		return fmt.Sprintf(
			"%s: alias context %s for table '%s' is no longer active; model instances can not be shared between queries",
			ErrUnmappedField, e.Context, e.Table,
		)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: field reference does not point into a mapped field of table '%s'", ErrUnmappedField, e.Table)
	}
	return fmt.Sprintf("%s: field '%s' has no column on table '%s'", ErrUnmappedField, e.Field, e.Table)
}

// ErrorCode always returns ErrUnmappedField.
func (e *UnmappedFieldError) ErrorCode() Code {
	return ErrUnmappedField
}

func (e *UnmappedFieldError) Is(err error) bool {
	ce, ok := err.(codedError)
	return ok && ce.Code == ErrUnmappedField
}
