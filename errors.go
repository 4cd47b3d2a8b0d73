package stepmonitor

import "fmt"

// ErrHandshakeFailed indicates that the session could not be established. It is the only error that is fatal before
// the step loop starts.
type ErrHandshakeFailed struct {
	Cause error
}

// Error returns the error message.
func (e ErrHandshakeFailed) Error() string {
	return fmt.Sprintf("handshake with the orchestrator failed (%v)", e.Cause)
}

// Unwrap returns the underlying cause.
func (e ErrHandshakeFailed) Unwrap() error {
	return e.Cause
}

// ErrChannelFailed indicates that the monitor could not obtain the next step from the orchestrator.
type ErrChannelFailed struct {
	Cause error
}

// Error returns the error message.
func (e ErrChannelFailed) Error() string {
	return fmt.Sprintf("failed to receive the next step from the orchestrator (%v)", e.Cause)
}

// Unwrap returns the underlying cause.
func (e ErrChannelFailed) Unwrap() error {
	return e.Cause
}
