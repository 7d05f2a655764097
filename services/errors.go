package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a duplicate value for a unique field.
	ErrConflict = errors.New("already exists")
	// ErrNotFound is returned by stores and services when a record is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated covers every failure to establish the caller's identity.
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrForbidden marks an authenticated caller lacking a capability.
	ErrForbidden = errors.New("forbidden")
	// ErrMissingSecret is a configuration error: tokens cannot be signed or checked.
	ErrMissingSecret = errors.New("token signing secret is not configured")

	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrExpiredToken = fmt.Errorf("%w: token expired", ErrUnauthenticated)
)

// Error carries a client-safe message along with the kind it belongs to.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
