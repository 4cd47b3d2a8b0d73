package builtin_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.arcalot.io/assert"
	"go.flow.arcalot.io/stepmonitor/step"
	"go.flow.arcalot.io/stepmonitor/step/builtin"
)

type recordingReporter struct {
	lines []string
	time  time.Duration
}

func (r *recordingReporter) LogDebug(message string) {
	r.lines = append(r.lines, "debug: "+message)
}

func (r *recordingReporter) LogInfo(message string) {
	r.lines = append(r.lines, "info: "+message)
}

func (r *recordingReporter) LogError(message string) {
	r.lines = append(r.lines, "error: "+message)
}

func (r *recordingReporter) SendTime(d time.Duration) {
	r.time = d
}

func (r *recordingReporter) SendOK() {}

func (r *recordingReporter) SendError(_ error) {}

func (r *recordingReporter) Measure(fn func() error) error {
	return fn()
}

func TestTestLogging(t *testing.T) {
	r := &recordingReporter{}
	assert.NoError(t, builtin.TestLogging().Execute(context.Background(), r))
	assert.Equals(t, r.lines, []string{
		"debug: Test Logging: DEBUG",
		"info: Test Logging: INFO",
		"error: Test Logging: ERROR",
	})
	assert.Equals(t, r.time, 2*time.Second)
}

func TestError(t *testing.T) {
	err := builtin.Error().Execute(context.Background(), &recordingReporter{})
	assert.Error(t, err)
	var stepErr *step.Error
	if !errors.As(err, &stepErr) {
		t.Fatalf("Incorrect error returned: %v", err)
	}
	assert.Equals(t, err.Error(), "Error!")
}

func TestPrintStderr(t *testing.T) {
	stderr := &bytes.Buffer{}
	r := &recordingReporter{}
	assert.NoError(t, builtin.PrintStderr(stderr).Execute(context.Background(), r))
	assert.Equals(t, stderr.String(), "This is a line on stderr\n")
	assert.Equals(t, len(r.lines), 1)
}

func TestAll(t *testing.T) {
	steps := builtin.All(&bytes.Buffer{})
	assert.Equals(t, len(steps), 3)
	assert.MapContainsKey(t, builtin.NameTestLogging, steps)
	assert.MapContainsKey(t, builtin.NameError, steps)
	assert.MapContainsKey(t, builtin.NamePrintStderr, steps)
}

func TestDescriptions(t *testing.T) {
	descriptions := builtin.Descriptions()
	for name := range builtin.All(&bytes.Buffer{}) {
		assert.MapContainsKey(t, name, descriptions)
	}
}
