// Package apperr defines the error kinds shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure. The zero value is Internal.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	Forbidden
	NotFound
	Conflict
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error carries a kind and the short message returned to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match against the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Kind == BadRequest
	case ErrUnauthorized:
		return e.Kind == Unauthorized
	case ErrForbidden:
		return e.Kind == Forbidden
	case ErrNotFound:
		return e.Kind == NotFound
	case ErrConflict:
		return e.Kind == Conflict
	}
	return false
}

func New(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func Wrap(k Kind, msg string, err error) *Error { return &Error{Kind: k, Message: msg, Err: err} }

func NewBadRequest(msg string) *Error { return New(BadRequest, msg) }
func NewForbidden(msg string) *Error  { return New(Forbidden, msg) }
func NewNotFound(msg string) *Error   { return New(NotFound, msg) }
func NewConflict(msg string) *Error   { return New(Conflict, msg) }

// KindOf reports the kind of err; errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Message returns the client-facing message, or fallback for internal errors.
func Message(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != Internal {
		return ae.Message
	}
	return fallback
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(k Kind) int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
