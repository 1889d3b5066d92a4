// Package errors provides error wrapping that preserves the root cause of an
// error while adding context as it propagates up the stack, and errors that
// carry messages intended for the user.
package errors

import (
	goErrors "errors"
	"fmt"
)

// New creates a new error from the format string and arguments.
func New(format string, args ...interface{}) error {
	if len(args) == 0 {
		return goErrors.New(format)
	}
	return fmt.Errorf(format, args...)
}

// contextError wraps an error with a short description of what was being
// done when the error occurred.
type contextError struct {
	context string
	cause   error
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.cause)
}

func (err contextError) Unwrap() error {
	return err.cause
}

// WithContext adds context to err. The context should describe the action
// that failed, e.g. "read cache".
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return contextError{context: context, cause: err}
}

// RootCause returns the original error that was wrapped by WithContext.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.cause
	}
}

// FriendlyError is an error whose message is meant to be shown to the user
// directly, without the context chain.
type FriendlyError interface {
	error
	FriendlyMessage() string
}

type friendlyError struct {
	msg string
}

func (err friendlyError) Error() string {
	return err.msg
}

func (err friendlyError) FriendlyMessage() string {
	return err.msg
}

// NewFriendlyError creates an error that is printed verbatim to the user.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{fmt.Sprintf(format, args...)}
}

// GetFriendlyMessage returns the user facing message of err if any error in
// its context chain is a FriendlyError.
func GetFriendlyMessage(err error) (string, bool) {
	for err != nil {
		if friendly, ok := err.(FriendlyError); ok {
			return friendly.FriendlyMessage(), true
		}
		ctxErr, ok := err.(contextError)
		if !ok {
			return "", false
		}
		err = ctxErr.cause
	}
	return "", false
}
