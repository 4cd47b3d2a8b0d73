package lifecycle_test

import (
	"errors"
	"testing"

	"go.arcalot.io/assert"
	"go.flow.arcalot.io/stepmonitor/internal/lifecycle"
)

func TestSessionLifecycle(t *testing.T) {
	dag, err := lifecycle.Session().DAG()
	assert.NoError(t, err)
	assert.Equals(t, dag.HasCycles(), false)

	var transitions []string
	tracker, err := lifecycle.NewTracker(lifecycle.Session(), func(from lifecycle.Stage, to lifecycle.Stage) {
		transitions = append(transitions, from.ID+"->"+to.ID)
	})
	assert.NoError(t, err)
	assert.Equals(t, tracker.Current().ID, lifecycle.SessionUnstarted)

	assert.NoError(t, tracker.Advance(lifecycle.SessionHandshaking))
	assert.NoError(t, tracker.Advance(lifecycle.SessionRunning))
	assert.Equals(t, tracker.Finished(), false)
	assert.NoError(t, tracker.Advance(lifecycle.SessionTerminating))
	assert.NoError(t, tracker.Advance(lifecycle.SessionExited))
	assert.Equals(t, tracker.Finished(), true)

	assert.Equals(t, transitions, []string{
		"unstarted->handshaking",
		"handshaking->running",
		"running->terminating",
		"terminating->exited",
	})
}

func TestStepLifecycle(t *testing.T) {
	dag, err := lifecycle.Step().DAG()
	assert.NoError(t, err)
	assert.Equals(t, dag.HasCycles(), false)

	tracker := assert.NoErrorR[lifecycle.Tracker](t)(lifecycle.NewTracker(lifecycle.Step(), nil))
	assert.NoError(t, tracker.Advance(lifecycle.StepExecuting))
	assert.NoError(t, tracker.Advance(lifecycle.StepFailed))
	assert.Equals(t, tracker.Finished(), true)
}

func TestInvalidTransition(t *testing.T) {
	tracker := assert.NoErrorR[lifecycle.Tracker](t)(lifecycle.NewTracker(lifecycle.Session(), nil))

	err := tracker.Advance(lifecycle.SessionRunning)
	var invalid *lifecycle.ErrInvalidTransition
	if !errors.As(err, &invalid) {
		t.Fatalf("Incorrect error returned: %v", err)
	}
	assert.Equals(t, invalid.From, lifecycle.SessionUnstarted)
	assert.Equals(t, invalid.Allowed, []string{lifecycle.SessionHandshaking})
	assert.Equals(t, tracker.Current().ID, lifecycle.SessionUnstarted)
}

func TestInvalidLifecycle(t *testing.T) {
	_, err := lifecycle.NewTracker(lifecycle.Lifecycle[lifecycle.Stage]{
		InitialStage: "a",
		Stages: []lifecycle.Stage{
			{ID: "a", NextStages: []string{"c"}},
			{ID: "b", NextStages: []string{"c"}},
			{ID: "c"},
		},
	}, nil)
	assert.Error(t, err)

	_, err = lifecycle.NewTracker(lifecycle.Lifecycle[lifecycle.Stage]{
		InitialStage: "b",
		Stages: []lifecycle.Stage{
			{ID: "a", NextStages: []string{"b"}},
			{ID: "b"},
		},
	}, nil)
	assert.Error(t, err)

	_, err = lifecycle.NewTracker(lifecycle.Lifecycle[lifecycle.Stage]{
		InitialStage: "a",
		Stages: []lifecycle.Stage{
			{ID: "a", NextStages: []string{"missing"}},
		},
	}, nil)
	assert.Error(t, err)
}
