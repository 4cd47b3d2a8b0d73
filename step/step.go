package step

import (
	"context"
	"time"
)

// Step is a single probe the orchestrator can ask the monitor to run.
type Step interface {
	// Execute runs the step. Log lines and measurements should be sent through the reporter while the step runs.
	// Returning nil marks the step as successful unless the step already reported a terminal outcome via SendOK,
	// SendTime or SendError. Returning an error (or panicking) reports the step as failed.
	Execute(ctx context.Context, reporter Reporter) error
}

// Func adapts a plain function to the Step interface.
type Func func(ctx context.Context, reporter Reporter) error

// Execute calls the underlying function.
func (f Func) Execute(ctx context.Context, reporter Reporter) error {
	return f(ctx, reporter)
}

// Reporter is the interface a running step uses to talk to the orchestrator. All calls are forwarded immediately
// and in order. Transport failures are not returned to the step; the monitor records and logs them.
type Reporter interface {
	// LogDebug sends a debug level log line to the orchestrator.
	LogDebug(message string)
	// LogInfo sends an informational log line to the orchestrator.
	LogInfo(message string)
	// LogError sends an error level log line to the orchestrator.
	LogError(message string)

	// SendTime reports the measured duration of the step. This completes the step successfully.
	SendTime(duration time.Duration)
	// SendOK explicitly completes the step successfully without a measurement.
	SendOK()
	// SendError completes the step as failed.
	SendError(err error)

	// Measure runs the passed function and sends its duration as the step time if it returns without an error.
	// The error is returned unchanged so the step can return it.
	Measure(fn func() error) error
}

// Registry holds the steps a monitor can run, keyed by name.
type Registry interface {
	// Resolve returns the step registered under the name, or an ErrStepNotFound.
	Resolve(name string) (Step, error)
	// Names returns the sorted list of registered step names.
	Names() []string
}
