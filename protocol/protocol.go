// Package protocol describes the channel a monitor uses to talk to its orchestrator. The wire format is left to
// the implementations; the monitor only relies on the ordering and request/response behavior described here.
package protocol

import "context"

// ConfigHandler receives the configuration the orchestrator sends during the handshake. The values are opaque to the
// monitor and are passed through as-is. Returning an error fails the handshake.
type ConfigHandler func(ctx context.Context, config map[string]string) error

// Handler is a hook the orchestrator may trigger while the monitor waits for the next step, such as cleanup between
// steps or teardown at the end of the session.
type Handler func(ctx context.Context) error

// NoopHandler is the default cleanup and teardown handler. It does nothing.
func NoopHandler(_ context.Context) error {
	return nil
}

// NoopConfigHandler accepts any configuration without acting on it.
func NoopConfigHandler(_ context.Context, _ map[string]string) error {
	return nil
}

// Channel is the connection to the orchestrator. Every call is a complete exchange: it returns only once the
// message has been handed to the transport, so calls are observed by the orchestrator in the order they were made.
type Channel interface {
	// Handshake negotiates the session with the orchestrator. The configHandler is called with the configuration
	// received from the orchestrator before the handshake completes.
	Handshake(ctx context.Context, configHandler ConfigHandler) error
	// GetStep waits for the orchestrator to request the next step. If more is false, the orchestrator asked the
	// monitor to exit and name is empty. The cleanup and teardown handlers may be invoked while waiting.
	GetStep(ctx context.Context, cleanup Handler, teardown Handler) (name string, more bool, err error)

	// LogDebug sends a debug log line.
	LogDebug(message string) error
	// LogInfo sends an informational log line.
	LogInfo(message string) error
	// LogError sends an error log line.
	LogError(message string) error

	// SendTime reports the duration of the current step in seconds.
	SendTime(seconds float64) error
	// SendOK reports the current step as successful.
	SendOK() error
	// SendError reports the current step as failed.
	SendError(err error) error
}
