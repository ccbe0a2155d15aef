package errors

import (
	"errors"
	"fmt"
)

// Standard error kinds
var (
	ErrAuthentication = errors.New("authentication error")
	ErrConfiguration  = errors.New("configuration error")
	ErrHTTPRequest    = errors.New("HTTP request error")
	ErrHTTPResponse   = errors.New("HTTP response error")
	ErrGraphQL        = errors.New("graphql error")
	ErrTokenExpired   = errors.New("token expired")
	ErrValidation     = errors.New("validation error")
)

// WrapError tags err with errType and a short context message.
// Both errType and err stay reachable through errors.Is / errors.As.
func WrapError(err error, errType error, message string) error {
	return &kindError{kind: errType, message: message, cause: err}
}

type kindError struct {
	kind    error
	message string
	cause   error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.kind, e.message, e.cause)
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// Is provides a convenience wrapper around errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As provides a convenience wrapper around errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap provides a convenience wrapper around errors.Unwrap
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New is errors.New, re-exported so callers importing this package need not alias the stdlib one.
func New(text string) error {
	return errors.New(text)
}
