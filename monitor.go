package stepmonitor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.arcalot.io/lang"
	log "go.arcalot.io/log/v2"
	"go.flow.arcalot.io/stepmonitor/internal/lifecycle"
	"go.flow.arcalot.io/stepmonitor/internal/metrics"
	"go.flow.arcalot.io/stepmonitor/internal/report"
	"go.flow.arcalot.io/stepmonitor/protocol"
	"go.flow.arcalot.io/stepmonitor/step"
)

// Monitor drives a single session with the orchestrator.
type Monitor interface {
	// Run performs the handshake and then executes the steps the orchestrator requests, one at a time, until the
	// orchestrator asks the monitor to exit. It returns nil on a regular exit.
	//
	// Step failures, including requests for unknown steps, are reported to the orchestrator and never end the
	// session. Run only returns an error if the handshake fails (ErrHandshakeFailed), the next step cannot be
	// received (ErrChannelFailed) or the context is cancelled between steps.
	Run(ctx context.Context) error
}

type monitor struct {
	logger        log.Logger
	channel       protocol.Channel
	registry      step.Registry
	configHandler protocol.ConfigHandler
	cleanup       protocol.Handler
	teardown      protocol.Handler
	recorder      metrics.Recorder
}

func (m *monitor) Run(ctx context.Context) error {
	logger := m.logger.WithLabel("session", uuid.NewString())
	session := lang.Must2(lifecycle.NewTracker(lifecycle.Session(), transitionLogger(logger, "Session")))
	logger.Debugf("Session lifecycle Mermaid:\n%s", lang.Must2(lifecycle.Session().DAG()).Mermaid())

	advance(session, lifecycle.SessionHandshaking)
	logger.Debugf("Performing handshake...")
	if err := m.channel.Handshake(ctx, m.configHandler); err != nil {
		advance(session, lifecycle.SessionHandshakeFailed)
		logger.Errorf("Handshake failed (%v)", err)
		return &ErrHandshakeFailed{Cause: err}
	}
	advance(session, lifecycle.SessionRunning)
	logger.Infof("Handshake complete, %d steps available: %v", len(m.registry.Names()), m.registry.Names())

	reporter := report.New(m.channel, logger, m.recorder)
	for {
		more, err := m.runNext(ctx, reporter, logger)
		if err != nil {
			advance(session, lifecycle.SessionAborted)
			return err
		}
		if !more {
			break
		}
	}

	advance(session, lifecycle.SessionTerminating)
	reporter.LogInfo("Orchestrator asked to exit, all done")
	if err := reporter.Err(); err != nil {
		logger.Warningf("The session encountered reporting failures (%v)", err)
	}
	advance(session, lifecycle.SessionExited)
	return nil
}

// runNext runs one iteration of the step loop. It returns false once the orchestrator asked the monitor to exit.
func (m *monitor) runNext(ctx context.Context, reporter report.Session, logger log.Logger) (bool, error) {
	iteration := lang.Must2(lifecycle.NewTracker(lifecycle.Step(), transitionLogger(logger, "Step")))

	if err := ctx.Err(); err != nil {
		advance(iteration, lifecycle.StepAborted)
		return false, err
	}
	name, more, err := m.channel.GetStep(ctx, m.cleanup, m.teardown)
	if err != nil {
		advance(iteration, lifecycle.StepAborted)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, &ErrChannelFailed{Cause: err}
	}
	if !more {
		advance(iteration, lifecycle.StepTerminated)
		return false, nil
	}

	advance(iteration, lifecycle.StepExecuting)
	reporter.LogDebug(fmt.Sprintf("Starting step %s", name))
	stepReporter := reporter.ForStep(name)
	outcome := stepReporter.Finish(m.execute(ctx, name, stepReporter, logger))
	if outcome == report.OutcomeOK {
		advance(iteration, lifecycle.StepSucceeded)
	} else {
		advance(iteration, lifecycle.StepFailed)
	}
	logger.Infof("Step %s finished with outcome %s.", name, outcome)
	return true, nil
}

// execute resolves and runs a step. Panics in the step body are recovered and turned into a step error so that a
// misbehaving step cannot take down the session.
func (m *monitor) execute(ctx context.Context, name string, reporter step.Reporter, logger log.Logger) (err error) {
	body, err := m.registry.Resolve(name)
	if err != nil {
		logger.Warningf("Orchestrator requested an unknown step (%v)", err)
		return err
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Errorf("Step %s panicked (%v)", name, recovered)
			err = step.Normalize(recovered)
		}
	}()
	return body.Execute(ctx, reporter)
}

func advance(tracker lifecycle.Tracker, stage string) {
	if err := tracker.Advance(stage); err != nil {
		panic(fmt.Errorf("bug: %w", err))
	}
}

func transitionLogger(logger log.Logger, kind string) lifecycle.TransitionHandler {
	return func(from lifecycle.Stage, to lifecycle.Stage) {
		logger.Debugf("%s stage changed from %s to %s.", kind, from.Description, to.Description)
	}
}
