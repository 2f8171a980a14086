package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnauthorized    ErrorKind = "unauthorized"
	KindValidation      ErrorKind = "validation_error"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindRateLimited     ErrorKind = "rate_limited"
	KindBudgetExhausted ErrorKind = "budget_exhausted"
	KindTimingNotMet    ErrorKind = "timing_not_met"
	KindInternal        ErrorKind = "internal_error"
)

// Error is the error type returned by every service operation. Handlers map
// Kind to a status code and show Message to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
	// RemainingSeconds is set for KindTimingNotMet.
	RemainingSeconds int
	Err              error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "authentication required"}
	ErrValidation      = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflict"}
	ErrRateLimited     = &Error{Kind: KindRateLimited, Message: "too many views, try again later"}
	ErrBudgetExhausted = &Error{Kind: KindBudgetExhausted, Message: "campaign budget exhausted"}
	ErrTimingNotMet    = &Error{Kind: KindTimingNotMet, Message: "view time not met"}
	ErrInternal        = &Error{Kind: KindInternal, Message: "internal error"}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// asServiceError passes *Error through and wraps anything else as internal.
func asServiceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalError(op, err)
}

// KindOf reports the kind of err, treating unknown errors as internal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
