// Package apperr defines the error kinds shared by every layer of the service.
// Domain packages declare their own sentinels with the constructors below so
// errors.Is matches both the sentinel and its kind.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds.
var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrNotFound      = errors.New("not found")
	ErrConstraint    = errors.New("constraint violation")
	ErrProvider      = errors.New("provider error")
	ErrParse         = errors.New("parse error")
)

// Error is a kind-tagged error with a user-facing message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Validation returns a ValidationError.
func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// Validationf returns a formatted ValidationError.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Authorization returns an AuthorizationError.
func Authorization(msg string) *Error {
	return &Error{Kind: ErrAuthorization, Message: msg}
}

// NotFound returns a NotFoundError.
func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Constraint returns a ConstraintError wrapping the underlying cause, if any.
func Constraint(msg string, cause error) *Error {
	return &Error{Kind: ErrConstraint, Message: msg, Err: cause}
}

// ProviderError reports a failed or timed-out call to the LLM provider.
type ProviderError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *ProviderError) Error() string {
	provider := e.Provider
	if provider == "" {
		provider = "llm"
	}
	if e.Timeout {
		return fmt.Sprintf("%s request timed out: %v", provider, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// ParseError reports provider output that could not be mapped to an analysis.
// Raw holds the untouched provider text so callers can surface it.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return "parse provider response: " + e.Reason
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Message returns the user-facing message of err if it carries one.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}
