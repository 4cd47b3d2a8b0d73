// Package builtin contains the probe steps shipped with the test monitor. They exercise the reporting paths of the
// orchestrator protocol: logging at every level, timing, failures and output on stderr.
package builtin

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.flow.arcalot.io/stepmonitor/step"
)

// Names of the built-in steps.
const (
	NameTestLogging = "TestLogging"
	NameError       = "Error"
	NamePrintStderr = "PrintStderr"
)

// TestLogging sends one log line per level followed by a fixed step time of two seconds.
func TestLogging() step.Step {
	return step.Func(func(_ context.Context, r step.Reporter) error {
		r.LogDebug("Test Logging: DEBUG")
		r.LogInfo("Test Logging: INFO")
		r.LogError("Test Logging: ERROR")
		r.SendTime(2 * time.Second)
		return nil
	})
}

// Error always fails with the message "Error!".
func Error() step.Step {
	return step.Func(func(_ context.Context, _ step.Reporter) error {
		return step.NewError("Error!")
	})
}

// PrintStderr writes a line to the given writer, normally the process stderr. The orchestrator must not mistake it
// for protocol traffic.
func PrintStderr(stderr io.Writer) step.Step {
	return step.Func(func(_ context.Context, r step.Reporter) error {
		if _, err := fmt.Fprintln(stderr, "This is a line on stderr"); err != nil {
			return step.Wrap(err, "failed to write to stderr")
		}
		r.LogDebug("Printed a line on stderr")
		return nil
	})
}

// Descriptions returns a human-readable description of every built-in step keyed by name.
func Descriptions() map[string]string {
	return map[string]string{
		NameTestLogging: "Logs one line per level and reports a step time of two seconds.",
		NameError:       "Always fails with the message \"Error!\".",
		NamePrintStderr: "Writes a line to the standard error of the monitor.",
	}
}

// All returns every built-in step keyed by name.
func All(stderr io.Writer) map[string]step.Step {
	return map[string]step.Step{
		NameTestLogging: TestLogging(),
		NameError:       Error(),
		NamePrintStderr: PrintStderr(stderr),
	}
}
