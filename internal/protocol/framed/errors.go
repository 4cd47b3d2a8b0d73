package framed

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when reading from a channel that has been closed.
var ErrClosed = errors.New("orchestrator channel closed")

// ErrInvalidFrame indicates that the orchestrator sent data that cannot be decoded as a frame.
type ErrInvalidFrame struct {
	Reason string
}

// Error returns the error message.
func (e ErrInvalidFrame) Error() string {
	return fmt.Sprintf("invalid frame received from orchestrator: %s", e.Reason)
}

// ErrUnexpectedMessage indicates that the orchestrator sent a message that is not valid at this point of the session.
type ErrUnexpectedMessage struct {
	Expected string
	Message  string
}

// Error returns the error message.
func (e ErrUnexpectedMessage) Error() string {
	return fmt.Sprintf("unexpected message from orchestrator, expected %s, got: %q", e.Expected, e.Message)
}

// ErrUnsupportedVersion indicates that the orchestrator speaks a protocol version this monitor does not support.
type ErrUnsupportedVersion struct {
	Version string
}

// Error returns the error message.
func (e ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf(
		"unsupported protocol version: %s (only major version %s is supported)",
		e.Version,
		SupportedMajorVersion,
	)
}

// ErrInvalidConfig indicates that the configuration sent during the handshake could not be decoded.
type ErrInvalidConfig struct {
	Cause error
}

// Error returns the error message.
func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration received from orchestrator (%v)", e.Cause)
}

// Unwrap returns the underlying decoding error.
func (e ErrInvalidConfig) Unwrap() error {
	return e.Cause
}
