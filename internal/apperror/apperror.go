// Package apperror classifies service failures so HTTP adapters can pick a
// status code and a user-facing message without inspecting causes.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindUnauthorized
	KindUnauthenticated
	KindValidation
	KindBadRequest
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindValidation:
		return "validation"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Conflict(message string) *Error        { return New(KindConflict, message, nil) }
func Unauthorized(message string) *Error    { return New(KindUnauthorized, message, nil) }
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message, nil) }
func Validation(message string) *Error      { return New(KindValidation, message, nil) }
func BadRequest(message string) *Error      { return New(KindBadRequest, message, nil) }
func NotFound(message string) *Error        { return New(KindNotFound, message, nil) }

// Internal wraps an unexpected fault. The message shown to clients is fixed.
func Internal(cause error) *Error {
	return New(KindInternal, "Internal server error.", cause)
}

// KindOf reports the kind of err. Errors that were never classified are
// internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message carried by err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Internal server error."
}
