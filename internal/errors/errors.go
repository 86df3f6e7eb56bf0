/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package errors defines the error taxonomy shared by the session service and
// its HTTP surface.
package errors

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeValidation     Code = "VALIDATION"
	CodeNotFound       Code = "NOT_FOUND"
	CodeInvalidState   Code = "INVALID_STATE"
	CodeStaleRound     Code = "STALE_ROUND"
	CodeDuplicateGuess Code = "DUPLICATE_GUESS"
	CodeUpstream       Code = "UPSTREAM"
	CodeInternal       Code = "INTERNAL"
)

// HTTPStatus maps a code onto the status returned by the HTTP handlers.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeInvalidState, CodeStaleRound, CodeDuplicateGuess:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first domain error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Sentinels usable with errors.Is.
var (
	ErrValidation     = New(CodeValidation, "validation failed")
	ErrNotFound       = New(CodeNotFound, "not found")
	ErrInvalidState   = New(CodeInvalidState, "invalid state")
	ErrStaleRound     = New(CodeStaleRound, "stale round")
	ErrDuplicateGuess = New(CodeDuplicateGuess, "duplicate guess")
	ErrUpstream       = New(CodeUpstream, "upstream unavailable")
	ErrInternal       = New(CodeInternal, "internal error")
)
