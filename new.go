package stepmonitor

import (
	"fmt"

	log "go.arcalot.io/log/v2"
	"go.flow.arcalot.io/stepmonitor/internal/metrics"
	"go.flow.arcalot.io/stepmonitor/protocol"
	"go.flow.arcalot.io/stepmonitor/step"
)

// Option customizes a monitor.
type Option func(m *monitor)

// WithConfigHandler sets the function receiving the orchestrator configuration during the handshake.
func WithConfigHandler(handler protocol.ConfigHandler) Option {
	return func(m *monitor) {
		m.configHandler = handler
	}
}

// WithCleanupHandler sets the handler the orchestrator may invoke between steps.
func WithCleanupHandler(handler protocol.Handler) Option {
	return func(m *monitor) {
		m.cleanup = handler
	}
}

// WithTeardownHandler sets the handler the orchestrator may invoke at the end of the session.
func WithTeardownHandler(handler protocol.Handler) Option {
	return func(m *monitor) {
		m.teardown = handler
	}
}

// WithMetrics sets the recorder that receives the outcome of every step.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(m *monitor) {
		m.recorder = recorder
	}
}

// New creates a monitor that runs the steps from the registry as the orchestrator on the other end of the channel
// requests them.
func New(
	logger log.Logger,
	channel protocol.Channel,
	registry step.Registry,
	options ...Option,
) (Monitor, error) {
	if channel == nil {
		return nil, fmt.Errorf("bug: no protocol channel provided")
	}
	if registry == nil {
		return nil, fmt.Errorf("bug: no step registry provided")
	}
	m := &monitor{
		logger:        logger,
		channel:       channel,
		registry:      registry,
		configHandler: protocol.NoopConfigHandler,
		cleanup:       protocol.NoopHandler,
		teardown:      protocol.NoopHandler,
		recorder:      metrics.Discard,
	}
	for _, option := range options {
		option(m)
	}
	if m.configHandler == nil {
		m.configHandler = protocol.NoopConfigHandler
	}
	if m.cleanup == nil {
		m.cleanup = protocol.NoopHandler
	}
	if m.teardown == nil {
		m.teardown = protocol.NoopHandler
	}
	if m.recorder == nil {
		m.recorder = metrics.Discard
	}
	return m, nil
}
