package checkout

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed provider interaction.
type ErrorKind string

const (
	// ErrKindTransport covers network failures, timeouts and 5xx responses.
	ErrKindTransport ErrorKind = "transport"
	// ErrKindValidation covers malformed local input.
	ErrKindValidation ErrorKind = "validation"
	// ErrKindProviderRejected covers 4xx responses with a structured body.
	ErrKindProviderRejected ErrorKind = "provider-rejected"
	// ErrKindNotFound covers missing remote or local records.
	ErrKindNotFound ErrorKind = "not-found"
)

// Error is the structured failure result of a provider operation. Every
// remote failure surfaces as an *Error; there is no partial success.
type Error struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a structured checkout error.
func NewError(kind ErrorKind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the error kind of err, or an empty kind when err is not a
// checkout error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found checkout error.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}
