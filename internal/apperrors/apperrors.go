// Package apperrors defines the error taxonomy shared by the service and
// HTTP layers. Handlers translate these into status codes; messages are
// plain language and safe to show to users.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed caller input. Maps to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError reports an absent user or entity. Maps to 404.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NotFound builds a NotFoundError from a format string.
func NotFound(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ComputationError is unreachable with validated input. If one occurs it is
// a bug: the caller logs it and returns a generic failure, never internals.
type ComputationError struct {
	Msg string
}

func (e *ComputationError) Error() string { return e.Msg }

// Computation builds a ComputationError from a format string.
func Computation(format string, args ...interface{}) error {
	return &ComputationError{Msg: fmt.Sprintf(format, args...)}
}

// ErrInvalidCredentials is returned on any login failure. Maps to 401.
var ErrInvalidCredentials = errors.New("invalid email or password")
