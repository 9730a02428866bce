// Package apperr defines the client-facing error kinds returned by the
// recipe, relation and user operations, and maps them onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAlreadyExists
	KindNotFound
	KindSelfReference
	KindForbidden
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindSelfReference:
		return "self_reference"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Error is a terminal client error. Field names the offending input field
// for validation failures.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation      = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAlreadyExists   = &Error{Kind: KindAlreadyExists, Message: "already exists"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrSelfReference   = &Error{Kind: KindSelfReference, Message: "self reference"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
)

func Validation(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func AlreadyExists(msg string) error {
	return &Error{Kind: KindAlreadyExists, Message: msg}
}

// AlreadyExistsField is AlreadyExists for a unique input field (email, username, slug).
func AlreadyExistsField(field, msg string) error {
	return &Error{Kind: KindAlreadyExists, Field: field, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func SelfReference(msg string) error {
	return &Error{Kind: KindSelfReference, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Unauthenticated() error {
	return ErrUnauthenticated
}

// KindOf reports the kind of err, or 0 for infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Status maps err onto an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindSelfReference:
		return http.StatusBadRequest
	case KindAlreadyExists:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
