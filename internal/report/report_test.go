package report_test

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.arcalot.io/assert"
	log "go.arcalot.io/log/v2"
	"go.flow.arcalot.io/stepmonitor/internal/metrics"
	"go.flow.arcalot.io/stepmonitor/internal/protocol/fake"
	"go.flow.arcalot.io/stepmonitor/internal/report"
	"go.flow.arcalot.io/stepmonitor/step"
)

func newSession(t *testing.T, channel *fake.Channel) (report.Session, *metrics.Metrics) {
	m := metrics.New()
	logger := log.NewLogger(log.LevelDebug, log.NewTestWriter(t))
	return report.New(channel, logger, m), m
}

func TestOrdering(t *testing.T) {
	channel := &fake.Channel{}
	session, _ := newSession(t, channel)

	r := session.ForStep("TestLogging")
	r.LogDebug("Test Logging: DEBUG")
	r.LogInfo("Test Logging: INFO")
	r.LogError("Test Logging: ERROR")
	r.SendTime(2 * time.Second)
	assert.Equals(t, r.Finish(nil), report.OutcomeOK)

	assert.Equals(t, channel.Calls(), []fake.Call{
		{Method: fake.MethodLogDebug, Argument: "Test Logging: DEBUG"},
		{Method: fake.MethodLogInfo, Argument: "Test Logging: INFO"},
		{Method: fake.MethodLogError, Argument: "Test Logging: ERROR"},
		{Method: fake.MethodSendTime, Argument: "2"},
	})
}

func TestFinish_OK(t *testing.T) {
	channel := &fake.Channel{}
	session, m := newSession(t, channel)

	r := session.ForStep("Quiet")
	assert.Equals(t, r.Outcome(), report.OutcomeNone)
	assert.Equals(t, r.Finish(nil), report.OutcomeOK)
	assert.Equals(t, channel.Calls(), []fake.Call{{Method: fake.MethodSendOK}})
	assert.Equals(t, testutil.ToFloat64(m.Steps().WithLabelValues("Quiet", "ok")), 1.0)
}

func TestFinish_Error(t *testing.T) {
	channel := &fake.Channel{}
	session, m := newSession(t, channel)

	r := session.ForStep("Error")
	assert.Equals(t, r.Finish(step.NewError("Error!")), report.OutcomeError)
	assert.Equals(t, channel.Calls(), []fake.Call{{Method: fake.MethodSendError, Argument: "Error!"}})
	assert.Equals(t, testutil.ToFloat64(m.Steps().WithLabelValues("Error", "error")), 1.0)
}

func TestFinish_NotFound(t *testing.T) {
	channel := &fake.Channel{}
	session, m := newSession(t, channel)

	r := session.ForStep("Missing")
	notFound := &step.ErrStepNotFound{Name: "Missing", ValidNames: []string{"Error"}}
	assert.Equals(t, r.Finish(notFound), report.OutcomeNotFound)
	assert.Equals(t, channel.Calls(), []fake.Call{{Method: fake.MethodSendError, Argument: notFound.Error()}})
	assert.Equals(t, testutil.ToFloat64(m.Steps().WithLabelValues("Missing", "not_found")), 1.0)
}

func TestExplicitReportsAreForwarded(t *testing.T) {
	channel := &fake.Channel{}
	session, _ := newSession(t, channel)

	r := session.ForStep("Chatty")
	r.SendOK()
	r.SendTime(time.Second)
	r.SendError(fmt.Errorf("explicit"))
	assert.Equals(t, r.Outcome(), report.OutcomeError)
	r.SendOK()
	assert.Equals(t, r.Finish(nil), report.OutcomeError)

	assert.Equals(t, channel.Calls(), []fake.Call{
		{Method: fake.MethodSendOK},
		{Method: fake.MethodSendTime, Argument: "1"},
		{Method: fake.MethodSendError, Argument: "explicit"},
		{Method: fake.MethodSendOK},
	})
}

func TestFinish_ErrorAfterReportedTime(t *testing.T) {
	channel := &fake.Channel{}
	session, m := newSession(t, channel)

	r := session.ForStep("Late")
	r.SendTime(2 * time.Second)
	assert.Equals(t, r.Outcome(), report.OutcomeOK)
	assert.Equals(t, r.Finish(fmt.Errorf("boom")), report.OutcomeError)

	assert.Equals(t, channel.Calls(), []fake.Call{
		{Method: fake.MethodSendTime, Argument: "2"},
		{Method: fake.MethodSendError, Argument: "boom"},
	})
	assert.Equals(t, testutil.ToFloat64(m.Steps().WithLabelValues("Late", "error")), 1.0)
}

func TestStepReportedErrorThenReturnedNil(t *testing.T) {
	channel := &fake.Channel{}
	session, _ := newSession(t, channel)

	r := session.ForStep("SelfReporting")
	r.SendError(errors.New("check failed"))
	assert.Equals(t, r.Finish(nil), report.OutcomeError)
	assert.Equals(t, channel.Calls(), []fake.Call{{Method: fake.MethodSendError, Argument: "check failed"}})
}

func TestMeasure(t *testing.T) {
	channel := &fake.Channel{}
	session, _ := newSession(t, channel)

	r := session.ForStep("Measured")
	assert.NoError(t, r.Measure(func() error {
		return nil
	}))
	assert.Equals(t, r.Outcome(), report.OutcomeOK)
	calls := channel.Calls()
	assert.Equals(t, len(calls), 1)
	assert.Equals(t, calls[0].Method, fake.MethodSendTime)

	failing := session.ForStep("MeasuredFailure")
	err := failing.Measure(func() error {
		return io.ErrUnexpectedEOF
	})
	assert.Equals(t, err, io.ErrUnexpectedEOF)
	assert.Equals(t, failing.Outcome(), report.OutcomeNone)
}

func TestTransportFailureIsRecorded(t *testing.T) {
	channel := &fake.Channel{SendFailure: io.ErrClosedPipe}
	session, _ := newSession(t, channel)

	assert.Nil(t, session.Err())
	session.LogInfo("hello")
	r := session.ForStep("Broken")
	r.LogDebug("still recorded")
	assert.Equals(t, r.Finish(nil), report.OutcomeOK)

	if !errors.Is(session.Err(), io.ErrClosedPipe) {
		t.Fatalf("Incorrect error recorded: %v", session.Err())
	}
	assert.Equals(t, len(channel.Calls()), 3)

	var combined *multierror.Error
	if !errors.As(session.Err(), &combined) {
		t.Fatalf("Incorrect error type recorded: %T", session.Err())
	}
	assert.Equals(t, len(combined.Errors), 3)
}
