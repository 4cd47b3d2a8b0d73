// Package lifecycle describes the stages a monitor session and each step iteration go through, and tracks them at
// runtime so that the monitor can only move along declared transitions.
package lifecycle

import (
	"fmt"
	"sort"

	"go.arcalot.io/dgraph"
	"go.arcalot.io/lang"
)

// Lifecycle describes the stages of a process and which stage may follow which.
//
// A lifecycle must form a directed acyclic graph with exactly one stage without inbound transitions, the initial
// stage. Repetition (such as the step loop) is expressed by starting a new lifecycle instance, not by cycles.
type Lifecycle[StageType lifecycleStage] struct {
	// InitialStage contains the first stage.
	InitialStage string
	// Stages contains the list of stages.
	Stages []StageType
}

// DAG will return a directed acyclic graph of the lifecycle.
func (l Lifecycle[StageType]) DAG() (dgraph.DirectedGraph[StageType], error) {
	dag := dgraph.New[StageType]()
	for _, stage := range l.Stages {
		_, err := dag.AddNode(stage.Identifier(), stage)
		if err != nil {
			return nil, fmt.Errorf("failed to add stage %s to lifecycle (%w)", stage.Identifier(), err)
		}
	}
	for _, stage := range l.Stages {
		node := lang.Must2(dag.GetNodeByID(stage.Identifier()))
		for _, nextStage := range stage.NextStageIDs() {
			if err := node.Connect(nextStage); err != nil {
				return nil, fmt.Errorf("failed to connect lifecycle stage %s to %s (%w)", node.ID(), nextStage, err)
			}
		}
	}
	starterNodes := dag.ListNodesWithoutInboundConnections()
	if len(starterNodes) != 1 {
		return nil, fmt.Errorf("invalid number of initial stages for lifecycle: %d", len(starterNodes))
	}
	if _, ok := starterNodes[l.InitialStage]; !ok {
		return nil, fmt.Errorf("incorrect initial stage: %s (not a stage without inbound connections)", l.InitialStage)
	}
	return dag, nil
}

// lifecycleStage is a helper interface for being able to construct a DAG from a lifecycle.
type lifecycleStage interface {
	// Identifier returns the ID of the stage.
	Identifier() string
	// NextStageIDs returns the next stage identifiers.
	NextStageIDs() []string
}

// Stage is a single stage of a lifecycle.
type Stage struct {
	// ID uniquely identifies the stage within the lifecycle.
	ID string
	// Description is a human-readable name used in logs.
	Description string
	// NextStages lists the stages that may directly follow this one. A stage without next stages is final.
	NextStages []string
}

// Identifier is a helper function for getting the ID.
func (s Stage) Identifier() string {
	return s.ID
}

// NextStageIDs is a helper function that returns the next possible stages.
func (s Stage) NextStageIDs() []string {
	return s.NextStages
}

// Final returns true if no stage may follow this one.
func (s Stage) Final() bool {
	return len(s.NextStages) == 0
}

// ErrInvalidTransition indicates an attempt to move to a stage that does not follow the current one.
type ErrInvalidTransition struct {
	From    string
	To      string
	Allowed []string
}

// Error returns the error message.
func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid lifecycle transition from %s to %s (allowed: %v)", e.From, e.To, e.Allowed)
}

// Tracker follows a single instance of a lifecycle.
type Tracker interface {
	// Current returns the current stage.
	Current() Stage
	// Advance moves to the next stage. It fails with ErrInvalidTransition if the stage does not follow the current one.
	Advance(stageID string) error
	// Finished returns true if the current stage is final.
	Finished() bool
}

// TransitionHandler is notified of every stage change.
type TransitionHandler func(from Stage, to Stage)

// NewTracker validates the lifecycle and starts tracking it at its initial stage.
func NewTracker(l Lifecycle[Stage], onTransition TransitionHandler) (Tracker, error) {
	dag, err := l.DAG()
	if err != nil {
		return nil, err
	}
	node, err := dag.GetNodeByID(l.InitialStage)
	if err != nil {
		return nil, err
	}
	return &tracker{
		dag:          dag,
		current:      node,
		onTransition: onTransition,
	}, nil
}

type tracker struct {
	dag          dgraph.DirectedGraph[Stage]
	current      dgraph.Node[Stage]
	onTransition TransitionHandler
}

func (t *tracker) Current() Stage {
	return t.current.Item()
}

func (t *tracker) Advance(stageID string) error {
	next, err := t.current.ListOutboundConnections()
	if err != nil {
		return err
	}
	nextNode, ok := next[stageID]
	if !ok {
		allowed := make([]string, 0, len(next))
		for id := range next {
			allowed = append(allowed, id)
		}
		sort.Strings(allowed)
		return &ErrInvalidTransition{
			From:    t.current.ID(),
			To:      stageID,
			Allowed: allowed,
		}
	}
	previous := t.current.Item()
	t.current = nextNode
	if t.onTransition != nil {
		t.onTransition(previous, nextNode.Item())
	}
	return nil
}

func (t *tracker) Finished() bool {
	return t.current.Item().Final()
}
