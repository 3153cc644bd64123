// Package errors provides coded errors shared by the organizer services.
// Services return them; the CLI turns the code into an exit status.
//
//	if !taxonomy.HasCategory(category) {
//	    return errors.Validationf("unknown category %q", category)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeValidation   Code = "validation"
	CodePrecondition Code = "precondition"
	CodeConflict     Code = "conflict"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal"
)

var exitCodes = map[Code]int{
	CodeValidation:   2,
	CodePrecondition: 2,
	CodeNotFound:     3,
	CodeConflict:     4,
	CodeUnavailable:  5,
}

// ExitCode returns the process exit status for the code. Unknown codes
// and CodeInternal exit 1.
func (c Code) ExitCode() int {
	if n, ok := exitCodes[c]; ok {
		return n
	}
	return 1
}

// Error carries a code, a message for the user and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so callers can test against
// the Err* sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "invalid argument"}
	ErrPrecondition = &Error{Code: CodePrecondition, Message: "precondition failed"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrUnavailable  = &Error{Code: CodeUnavailable, Message: "unavailable"}
)

func newf(code Code, format string, args []any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

func NotFoundf(format string, args ...any) *Error { return newf(CodeNotFound, format, args) }

func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

func Validationf(format string, args ...any) *Error { return newf(CodeValidation, format, args) }

// ValidationWithDetails is a validation error carrying per-field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

func Preconditionf(format string, args ...any) *Error { return newf(CodePrecondition, format, args) }

func Conflictf(format string, args ...any) *Error { return newf(CodeConflict, format, args) }

// Wrapf wraps err under code with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	e := newf(code, format, args)
	e.cause = err
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ExitCode maps err to a CLI exit status; nil exits 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return CodeOf(err).ExitCode()
}
