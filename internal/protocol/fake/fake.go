// Package fake provides an in-memory orchestrator channel that records every call. It is meant for testing the
// monitor without a real orchestrator.
package fake

import (
	"context"
	"strconv"
	"sync"

	"go.flow.arcalot.io/stepmonitor/protocol"
)

// Method identifies a recorded channel call.
type Method string

const (
	// MethodHandshake is recorded for Handshake.
	MethodHandshake Method = "handshake"
	// MethodGetStep is recorded for GetStep.
	MethodGetStep Method = "get_step"
	// MethodCleanup is recorded when the fake invokes the cleanup handler.
	MethodCleanup Method = "cleanup"
	// MethodTeardown is recorded when the fake invokes the teardown handler.
	MethodTeardown Method = "teardown"
	// MethodLogDebug is recorded for LogDebug.
	MethodLogDebug Method = "log_debug"
	// MethodLogInfo is recorded for LogInfo.
	MethodLogInfo Method = "log_info"
	// MethodLogError is recorded for LogError.
	MethodLogError Method = "log_error"
	// MethodSendTime is recorded for SendTime.
	MethodSendTime Method = "send_time"
	// MethodSendOK is recorded for SendOK.
	MethodSendOK Method = "send_ok"
	// MethodSendError is recorded for SendError.
	MethodSendError Method = "send_error"
)

// Call is a single recorded channel call.
type Call struct {
	Method   Method
	Argument string
}

// Channel is a scripted protocol.Channel. Steps are handed out in order; once they run out GetStep returns the
// termination sentinel, or GetStepError if it is set.
type Channel struct {
	// Config is passed to the config handler during the handshake.
	Config map[string]string
	// HandshakeError fails the handshake before the config handler is called.
	HandshakeError error
	// Steps is the queue of step names the orchestrator requests.
	Steps []string
	// GetStepError is returned instead of the termination sentinel once Steps is exhausted.
	GetStepError error
	// SendFailure is returned from every reporting call. The call is still recorded.
	SendFailure error
	// CleanupBetweenSteps invokes the cleanup handler before every step but the first.
	CleanupBetweenSteps bool
	// TeardownOnExit invokes the teardown handler before returning the termination sentinel.
	TeardownOnExit bool

	lock    sync.Mutex
	calls   []Call
	served  int
	handler []error
}

// Calls returns a copy of the recorded calls.
func (c *Channel) Calls() []Call {
	c.lock.Lock()
	defer c.lock.Unlock()
	result := make([]Call, len(c.calls))
	copy(result, c.calls)
	return result
}

// CallsOf returns the recorded calls of the given methods, in order.
func (c *Channel) CallsOf(methods ...Method) []Call {
	var result []Call
	for _, call := range c.Calls() {
		for _, method := range methods {
			if call.Method == method {
				result = append(result, call)
				break
			}
		}
	}
	return result
}

// HandlerErrors returns the errors the cleanup and teardown handlers returned, in order.
func (c *Channel) HandlerErrors() []error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]error(nil), c.handler...)
}

func (c *Channel) record(method Method, argument string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.calls = append(c.calls, Call{Method: method, Argument: argument})
}

func (c *Channel) Handshake(ctx context.Context, configHandler protocol.ConfigHandler) error {
	c.record(MethodHandshake, "")
	if c.HandshakeError != nil {
		return c.HandshakeError
	}
	config := c.Config
	if config == nil {
		config = map[string]string{}
	}
	return configHandler(ctx, config)
}

func (c *Channel) GetStep(ctx context.Context, cleanup protocol.Handler, teardown protocol.Handler) (string, bool, error) {
	c.record(MethodGetStep, "")
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	c.lock.Lock()
	served := c.served
	c.lock.Unlock()

	if served >= len(c.Steps) {
		if c.GetStepError != nil {
			return "", false, c.GetStepError
		}
		if c.TeardownOnExit {
			c.runHandler(ctx, MethodTeardown, teardown)
		}
		return "", false, nil
	}
	if c.CleanupBetweenSteps && served > 0 {
		c.runHandler(ctx, MethodCleanup, cleanup)
	}
	c.lock.Lock()
	c.served++
	c.lock.Unlock()
	return c.Steps[served], true, nil
}

func (c *Channel) runHandler(ctx context.Context, method Method, handler protocol.Handler) {
	c.record(method, "")
	err := handler(ctx)
	c.lock.Lock()
	c.handler = append(c.handler, err)
	c.lock.Unlock()
}

func (c *Channel) LogDebug(message string) error {
	c.record(MethodLogDebug, message)
	return c.SendFailure
}

func (c *Channel) LogInfo(message string) error {
	c.record(MethodLogInfo, message)
	return c.SendFailure
}

func (c *Channel) LogError(message string) error {
	c.record(MethodLogError, message)
	return c.SendFailure
}

func (c *Channel) SendTime(seconds float64) error {
	c.record(MethodSendTime, strconv.FormatFloat(seconds, 'f', -1, 64))
	return c.SendFailure
}

func (c *Channel) SendOK() error {
	c.record(MethodSendOK, "")
	return c.SendFailure
}

func (c *Channel) SendError(err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	c.record(MethodSendError, message)
	return c.SendFailure
}
