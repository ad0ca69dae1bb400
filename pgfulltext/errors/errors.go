// Package errors defines the kinded error type returned across package
// boundaries. Subpackages return plain wrapped errors; the executor and the
// root package classify them into an *Error.
package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorKind string

const (
	ErrSchema        ErrorKind = "schema"
	ErrIntrospection ErrorKind = "introspection"
	ErrQueryParse    ErrorKind = "query_parse"
	ErrQueryRejected ErrorKind = "query_rejected"
	ErrSQL           ErrorKind = "sql"
	ErrUnknownField  ErrorKind = "unknown_field"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func SchemaError(msg string, cause error) *Error {
	return &Error{Kind: ErrSchema, Message: msg, Cause: cause}
}

func QueryParseError(field string, cause error) *Error {
	return &Error{Kind: ErrQueryParse, Message: "invalid search expression", Field: field, Cause: cause}
}

func QueryRejectedError(msg string, cause error) *Error {
	return &Error{Kind: ErrQueryRejected, Message: msg, Cause: cause}
}

func UnknownFieldError(field string) *Error {
	return &Error{Kind: ErrUnknownField, Message: "unknown field", Field: field}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
