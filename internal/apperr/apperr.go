// Package apperr defines the error taxonomy shared by the auth and shop
// services. Stores and clients return these typed errors and the HTTP layer
// maps their Kind to a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindInternal is the default for errors that carry no kind.
	KindInternal Kind = iota
	// KindValidation indicates a missing or malformed field, or a failed write.
	KindValidation
	// KindConflict indicates a duplicate username, shop name or shopkeeper.
	KindConflict
	// KindUnauthorized indicates bad credentials, a wrong role or an invalid token.
	KindUnauthorized
	// KindNotFound indicates a missing user, role, shop or item.
	KindNotFound
	// KindServiceUnavailable indicates the auth service could not be reached.
	KindServiceUnavailable
	// KindUpstream indicates the auth service answered with something unreadable.
	KindUpstream
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code for this error kind. Conflicts are
// reported as 400 to match the services' published contract.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a validation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// Conflict creates a conflict error.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// NotFound creates a not found error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// ServiceUnavailable wraps a transport failure towards another service.
func ServiceUnavailable(message string, err error) *Error {
	return Wrap(KindServiceUnavailable, message, err)
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error { return Wrap(KindInternal, message, err) }

// GetKind extracts the error kind from anywhere in err's chain.
// Returns KindInternal if no *Error is found.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is checks if err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && GetKind(err) == kind
}
