package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service error for callers that map errors to responses
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindInternal   ErrorKind = "internal"
)

// Reasons attached to service errors
const (
	ReasonInsufficientBalance = "insufficient_balance"
	ReasonInvalidAmount       = "invalid_amount"
	ReasonInvalidTransition   = "invalid_transition"
	ReasonPoolExhausted       = "pool_exhausted"
	ReasonBetNotFound         = "bet_not_found"
	ReasonUserNotFound        = "user_not_found"
	ReasonInvalidInput        = "invalid_input"
	ReasonLockContention      = "lock_contention"
)

// Sentinels usable with errors.Is
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

// Error is the error type returned by services for every classified failure
type Error struct {
	Kind    ErrorKind
	Reason  string
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

// Is matches the sentinel of the error's kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInternal:
		return e.Kind == KindInternal
	}
	return false
}

// NewValidationError builds a validation error with the given reason
func NewValidationError(reason, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError builds a not found error with the given reason
func NewNotFoundError(reason, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError wraps a lock or constraint failure that the caller may retry
func NewConflictError(message string, err error) *Error {
	return &Error{Kind: KindConflict, Reason: ReasonLockContention, Message: message, Err: err}
}

// ReasonOf returns the reason of a service error, or an empty string
func ReasonOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Reason
	}
	return ""
}
