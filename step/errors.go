package step

import (
	"fmt"
	"strings"
)

// ErrStepNotFound indicates that the orchestrator requested a step that is not registered.
type ErrStepNotFound struct {
	Name       string
	ValidNames []string
}

// Error returns the error message.
func (e ErrStepNotFound) Error() string {
	return fmt.Sprintf(
		"step not found: %s (only the following steps are registered: %s)",
		e.Name,
		strings.Join(e.ValidNames, ", "),
	)
}

// Error is the normalized failure of a step. Whatever a step returns or panics with is turned into this type
// before it is sent to the orchestrator.
type Error struct {
	Message string
	Cause   error
}

// NewError creates a step error with the given message and no cause.
func NewError(message string) *Error {
	return &Error{Message: message}
}

// Wrap creates a step error with a message and the underlying cause.
func Wrap(cause error, message string) *Error {
	return &Error{Message: message, Cause: cause}
}

// Error returns the error message, including the cause if any.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s (%v)", e.Message, e.Cause)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Normalize converts an arbitrary failure value into a step error. It accepts errors, strings, fmt.Stringer
// values and anything else a step may panic with.
func Normalize(value any) *Error {
	switch v := value.(type) {
	case nil:
		return NewError("step failed without an error value")
	case *Error:
		return v
	case error:
		return &Error{Cause: v}
	case string:
		return NewError(v)
	case fmt.Stringer:
		return NewError(v.String())
	default:
		return NewError(fmt.Sprintf("%v", v))
	}
}
