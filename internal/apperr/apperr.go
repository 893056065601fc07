// Package apperr defines the error kinds surfaced by the service layer and
// translated into HTTP responses by the server.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the API boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindBadRequest:
		return "bad request"
	default:
		return "internal"
	}
}

// Code is the machine readable error code returned to API clients.
type Code string

const (
	CodeInternal       Code = "INTERNAL_ERROR"
	CodeEntityNotFound Code = "ENTITY_NOT_FOUND"
	CodeRouteNotFound  Code = "ROUTE_NOT_FOUND"
	CodeDBRead         Code = "DB_READ_ERROR"
	CodeDBSave         Code = "DB_SAVE_ERROR"
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeTextRowParse   Code = "TEXT_ROW_PARSE"
	CodeSearchLimit    Code = "SEARCH_LIMIT"
	CodeRateLimited    Code = "TOO_MANY_REQUESTS"
)

// Error carries a Kind and Code alongside a human readable message and an
// optional underlying cause.
type Error struct {
	Kind Kind
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a message-less *Error with the same kind and
// code, so New(kind, code, "") can be used as a pattern with errors.Is.
// Sentinels with a message only match themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Msg != "" || t.Err != nil {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New returns an *Error with the given kind, code and message.
func New(kind Kind, code Code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// NotFound builds a KindNotFound error.
func NotFound(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// BadRequest builds a KindBadRequest error with CodeValidation.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Code: CodeValidation, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps err as a KindInternal error.
func Internal(code Code, err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Wrap adds context to err. An *Error keeps its kind and code; any other error
// becomes KindInternal.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return &Error{Kind: ae.Kind, Code: ae.Code, Msg: msg, Err: err}
	}
	return &Error{Kind: KindInternal, Code: CodeInternal, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, defaulting to
// KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain, defaulting to
// CodeInternal.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
