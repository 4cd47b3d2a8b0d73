package lifecycle

// Session stage IDs.
const (
	SessionUnstarted       = "unstarted"
	SessionHandshaking     = "handshaking"
	SessionHandshakeFailed = "handshake_failed"
	SessionRunning         = "running"
	SessionAborted         = "aborted"
	SessionTerminating     = "terminating"
	SessionExited          = "exited"
)

// Step iteration stage IDs.
const (
	StepAwaiting   = "awaiting_step"
	StepExecuting  = "executing_step"
	StepSucceeded  = "succeeded"
	StepFailed     = "failed"
	StepTerminated = "terminated"
	StepAborted    = "aborted"
)

// Session returns the lifecycle of a monitor session, from the handshake to the exit. While in the running stage
// the monitor repeats the step lifecycle.
func Session() Lifecycle[Stage] {
	return Lifecycle[Stage]{
		InitialStage: SessionUnstarted,
		Stages: []Stage{
			{
				ID:          SessionUnstarted,
				Description: "not started",
				NextStages:  []string{SessionHandshaking},
			},
			{
				ID:          SessionHandshaking,
				Description: "performing handshake",
				NextStages:  []string{SessionRunning, SessionHandshakeFailed},
			},
			{
				ID:          SessionHandshakeFailed,
				Description: "handshake failed",
			},
			{
				ID:          SessionRunning,
				Description: "running steps",
				NextStages:  []string{SessionTerminating, SessionAborted},
			},
			{
				ID:          SessionAborted,
				Description: "aborted",
			},
			{
				ID:          SessionTerminating,
				Description: "terminating",
				NextStages:  []string{SessionExited},
			},
			{
				ID:          SessionExited,
				Description: "exited",
			},
		},
	}
}

// Step returns the lifecycle of a single iteration of the step loop: waiting for the orchestrator, then either
// executing a step or ending the loop.
func Step() Lifecycle[Stage] {
	return Lifecycle[Stage]{
		InitialStage: StepAwaiting,
		Stages: []Stage{
			{
				ID:          StepAwaiting,
				Description: "awaiting step",
				NextStages:  []string{StepExecuting, StepTerminated, StepAborted},
			},
			{
				ID:          StepExecuting,
				Description: "executing step",
				NextStages:  []string{StepSucceeded, StepFailed},
			},
			{
				ID:          StepSucceeded,
				Description: "step succeeded",
			},
			{
				ID:          StepFailed,
				Description: "step failed",
			},
			{
				ID:          StepTerminated,
				Description: "termination requested",
			},
			{
				ID:          StepAborted,
				Description: "aborted while awaiting step",
			},
		},
	}
}
