// Package report provides the typed reporting layer between steps and the orchestrator channel. It forwards log
// lines and step outcomes in order, closes steps that did not report anything and keeps transport failures away from
// the step bodies.
package report

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	log "go.arcalot.io/log/v2"
	"go.flow.arcalot.io/stepmonitor/internal/metrics"
	"go.flow.arcalot.io/stepmonitor/protocol"
	"go.flow.arcalot.io/stepmonitor/step"
)

// Outcome is the result of a single step as seen by the orchestrator.
type Outcome string

const (
	// OutcomeNone means the step has not reported OK, a time or an error yet.
	OutcomeNone Outcome = ""
	// OutcomeOK means the step finished successfully, with or without a time measurement.
	OutcomeOK Outcome = "ok"
	// OutcomeError means the step failed.
	OutcomeError Outcome = "error"
	// OutcomeNotFound means the requested step is not registered.
	OutcomeNotFound Outcome = "not_found"
)

// Session reports session level messages and hands out per-step reporters.
type Session interface {
	// LogDebug sends a debug line to the orchestrator.
	LogDebug(message string)
	// LogInfo sends an informational line to the orchestrator.
	LogInfo(message string)
	// LogError sends an error line to the orchestrator.
	LogError(message string)
	// ForStep creates the reporter for the next step. Only one step reporter should be in use at a time.
	ForStep(name string) Step
	// Err returns every transport error encountered so far combined into one, or nil.
	Err() error
}

// Step is the reporter handed to a running step, extended with the hooks the monitor needs to close the step.
type Step interface {
	step.Reporter
	// Outcome returns the outcome reported so far. Once an error was reported the outcome stays failed.
	Outcome() Outcome
	// Finish closes the step with the result of its execution. A non-nil result is always sent as an error. A nil
	// result is sent as OK only if the step reported nothing itself. It returns the final outcome.
	Finish(result error) Outcome
}

// New creates the reporting session on top of a channel.
func New(channel protocol.Channel, logger log.Logger, recorder metrics.Recorder) Session {
	if recorder == nil {
		recorder = metrics.Discard
	}
	return &session{
		channel:  channel,
		logger:   logger,
		recorder: recorder,
	}
}

type session struct {
	channel  protocol.Channel
	logger   log.Logger
	recorder metrics.Recorder

	lock sync.Mutex
	errs *multierror.Error
}

func (s *session) LogDebug(message string) {
	s.check("debug log", s.channel.LogDebug(message))
}

func (s *session) LogInfo(message string) {
	s.check("info log", s.channel.LogInfo(message))
}

func (s *session) LogError(message string) {
	s.check("error log", s.channel.LogError(message))
}

func (s *session) ForStep(name string) Step {
	return &stepReporter{
		session: s,
		name:    name,
		started: time.Now(),
		logger:  s.logger.WithLabel("step", name),
	}
}

func (s *session) Err() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.errs.ErrorOrNil()
}

// check records a transport failure for Err and logs it locally, the orchestrator may no longer be reachable.
func (s *session) check(what string, err error) {
	if err == nil {
		return
	}
	s.logger.Errorf("Failed to send %s to the orchestrator (%v)", what, err)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.errs = multierror.Append(s.errs, fmt.Errorf("failed to send %s (%w)", what, err))
}

type stepReporter struct {
	session *session
	name    string
	started time.Time
	logger  log.Logger

	lock    sync.Mutex
	outcome Outcome
}

func (r *stepReporter) LogDebug(message string) {
	r.session.LogDebug(message)
}

func (r *stepReporter) LogInfo(message string) {
	r.session.LogInfo(message)
}

func (r *stepReporter) LogError(message string) {
	r.session.LogError(message)
}

func (r *stepReporter) SendTime(duration time.Duration) {
	r.record(OutcomeOK)
	r.session.check("step time", r.session.channel.SendTime(duration.Seconds()))
}

func (r *stepReporter) SendOK() {
	r.record(OutcomeOK)
	r.session.check("step OK", r.session.channel.SendOK())
}

func (r *stepReporter) SendError(err error) {
	r.sendError(step.Normalize(err), OutcomeError)
}

func (r *stepReporter) Measure(fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		return err
	}
	r.SendTime(time.Since(start))
	return nil
}

func (r *stepReporter) Outcome() Outcome {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.outcome
}

func (r *stepReporter) Finish(result error) Outcome {
	if result == nil {
		if r.Outcome() == OutcomeNone {
			r.SendOK()
		}
	} else {
		if r.Outcome() == OutcomeOK {
			r.logger.Warningf("Step %s failed after reporting success (%v)", r.name, result)
		}
		outcome := OutcomeError
		var notFound *step.ErrStepNotFound
		if errors.As(result, &notFound) {
			outcome = OutcomeNotFound
		}
		r.sendError(step.Normalize(result), outcome)
	}
	outcome := r.Outcome()
	r.session.recorder.StepFinished(r.name, string(outcome), time.Since(r.started))
	return outcome
}

func (r *stepReporter) sendError(err *step.Error, outcome Outcome) {
	r.record(outcome)
	r.session.check("step error", r.session.channel.SendError(err))
}

// record updates the outcome of the step. A failure is never overwritten by a later success.
func (r *stepReporter) record(outcome Outcome) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if outcome == OutcomeOK && r.outcome != OutcomeNone {
		return
	}
	r.outcome = outcome
}

var _ step.Reporter = &stepReporter{}

// String helps when printing outcomes in logs.
func (o Outcome) String() string {
	if o == OutcomeNone {
		return "none"
	}
	return string(o)
}
