package registry

import "fmt"

// ErrDuplicateStep indicates that two steps were registered with the same name.
type ErrDuplicateStep struct {
	Name string
}

// Error returns the error message.
func (e ErrDuplicateStep) Error() string {
	return fmt.Sprintf("duplicate step registered with the name %s", e.Name)
}

// ErrInvalidStep indicates that a step was registered with an empty name or without a body.
type ErrInvalidStep struct {
	Name   string
	Reason string
}

// Error returns the error message.
func (e ErrInvalidStep) Error() string {
	return fmt.Sprintf("invalid step %q: %s", e.Name, e.Reason)
}
