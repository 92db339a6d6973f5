// Package apperr holds the error taxonomy shared by handlers and middleware
// and its mapping onto HTTP responses.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindDuplicateAccount   Kind = "duplicate_account"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindAuthRequired       Kind = "auth_required"
	KindForbidden          Kind = "forbidden"
	KindRateLimited        Kind = "rate_limited"
	KindConfiguration      Kind = "configuration_error"
	KindUpstream           Kind = "upstream_failure"
	KindInternal           Kind = "internal_error"
)

var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindDuplicateAccount:   http.StatusBadRequest,
	KindNotFound:           http.StatusNotFound,
	KindInvalidCredentials: http.StatusBadRequest,
	KindAuthRequired:       http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindRateLimited:        http.StatusTooManyRequests,
	KindConfiguration:      http.StatusInternalServerError,
	KindUpstream:           http.StatusInternalServerError,
	KindInternal:           http.StatusInternalServerError,
}

type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error

	status int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status is the HTTP status the error is reported with.
func (e *Error) Status() int {
	if e.status != 0 {
		return e.status
	}
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithStatus overrides the default status for the kind. Used where the
// public API answers NotFound with 400 (login with an unknown email).
func (e *Error) WithStatus(status int) *Error {
	e.status = status
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// From returns err as an *Error, classifying anything unknown as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(KindInternal, "Internal Server Error", err)
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}
