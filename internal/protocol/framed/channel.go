// Package framed implements the orchestrator channel as length-prefixed text frames over a pair of streams,
// typically the standard input and output of the monitor process.
//
// Every frame is written as "<length> <payload>", where length is the decimal byte count of the payload. The
// session starts with the monitor sending "Started", followed by the orchestrator sending "Version <version>" and
// "Config <json>". Once the configuration is applied the monitor answers "Ready". From then on the orchestrator
// sends "Run Step <name>", "Run Cleanup", "Run Teardown" or "Exit <code>", and the monitor reports with
// "Log <Level> <message>", "Step OK", "Step Time <seconds>" and "Step Error <message>".
package framed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	log "go.arcalot.io/log/v2"
	"go.flow.arcalot.io/stepmonitor/internal/util"
	"go.flow.arcalot.io/stepmonitor/protocol"
)

// SupportedMajorVersion is the protocol major version this channel implements.
const SupportedMajorVersion = "1"

const (
	msgStarted     = "Started"
	msgReady       = "Ready"
	msgVersion     = "Version"
	msgConfig      = "Config"
	msgRunStep     = "Run Step"
	msgRunCleanup  = "Run Cleanup"
	msgRunTeardown = "Run Teardown"
	msgExit        = "Exit"
	msgLogDebug    = "Log Debug"
	msgLogInfo     = "Log Info"
	msgLogError    = "Log Error"
	msgStepOK      = "Step OK"
	msgStepTime    = "Step Time"
	msgStepError   = "Step Error"
	msgCleanup     = "Cleanup"
	msgTeardown    = "Teardown"
)

// Channel is a protocol.Channel over a pair of streams. Close releases the background reader once the session is
// over; the reader still holds the input until its current read returns.
type Channel interface {
	protocol.Channel
	io.Closer
}

// New creates a channel reading orchestrator frames from input and writing monitor frames to output.
func New(input io.Reader, output io.Writer, logger log.Logger) Channel {
	return &channel{
		reader: newFrameReader(input),
		writer: newFrameWriter(output),
		logger: logger,
		frames: make(chan frameResult),
		done:   make(chan struct{}),
	}
}

type frameResult struct {
	payload string
	err     error
}

type channel struct {
	reader    *frameReader
	writer    *frameWriter
	logger    log.Logger
	frames    chan frameResult
	startRead sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

func (c *channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

func (c *channel) Handshake(ctx context.Context, configHandler protocol.ConfigHandler) error {
	if configHandler == nil {
		configHandler = protocol.NoopConfigHandler
	}
	if err := c.writer.WriteFrame(msgStarted); err != nil {
		return err
	}

	message, err := c.read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read protocol version (%w)", err)
	}
	version, ok := cutCommand(message, msgVersion)
	if !ok {
		return &ErrUnexpectedMessage{Expected: msgVersion, Message: message}
	}
	major, _, _ := strings.Cut(version, ".")
	if major != SupportedMajorVersion {
		return &ErrUnsupportedVersion{Version: version}
	}
	c.logger.Debugf("Orchestrator speaks protocol version %s.", version)

	message, err = c.read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read configuration (%w)", err)
	}
	rawConfig, ok := cutCommand(message, msgConfig)
	if !ok {
		return &ErrUnexpectedMessage{Expected: msgConfig, Message: message}
	}
	config, err := decodeConfig(rawConfig)
	if err != nil {
		return err
	}
	if err := configHandler(ctx, config); err != nil {
		_ = c.LogError(fmt.Sprintf("Configuration failed: %v", err))
		return fmt.Errorf("configuration handler failed (%w)", err)
	}
	return c.writer.WriteFrame(msgReady)
}

func (c *channel) GetStep(
	ctx context.Context,
	cleanup protocol.Handler,
	teardown protocol.Handler,
) (string, bool, error) {
	if cleanup == nil {
		cleanup = protocol.NoopHandler
	}
	if teardown == nil {
		teardown = protocol.NoopHandler
	}
	for {
		message, err := c.read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.logger.Warningf("Orchestrator closed the connection, treating it as an exit request.")
				return "", false, nil
			}
			return "", false, err
		}
		switch {
		case message == msgRunCleanup:
			if err := c.runHandler(ctx, msgCleanup, cleanup); err != nil {
				return "", false, err
			}
		case message == msgRunTeardown:
			if err := c.runHandler(ctx, msgTeardown, teardown); err != nil {
				return "", false, err
			}
		case message == msgExit || strings.HasPrefix(message, msgExit+" "):
			c.logger.Debugf("Orchestrator requested exit (%s).", message)
			return "", false, nil
		default:
			name, ok := cutCommand(message, msgRunStep)
			if !ok || name == "" {
				return "", false, &ErrUnexpectedMessage{
					Expected: "a step, cleanup, teardown or exit request",
					Message:  message,
				}
			}
			return name, true, nil
		}
	}
}

// runHandler runs a cleanup or teardown handler and reports the result back. A failing handler is reported to the
// orchestrator, it does not end the session.
func (c *channel) runHandler(ctx context.Context, kind string, handler protocol.Handler) error {
	c.logger.Debugf("Running %s handler...", strings.ToLower(kind))
	if err := handler(ctx); err != nil {
		c.logger.Warningf("%s handler failed (%v)", kind, err)
		return c.writer.WriteFrame(kind + " Error " + err.Error())
	}
	return c.writer.WriteFrame(kind + " OK")
}

func (c *channel) LogDebug(message string) error {
	return c.writer.WriteFrame(msgLogDebug + " " + message)
}

func (c *channel) LogInfo(message string) error {
	return c.writer.WriteFrame(msgLogInfo + " " + message)
}

func (c *channel) LogError(message string) error {
	return c.writer.WriteFrame(msgLogError + " " + message)
}

func (c *channel) SendTime(seconds float64) error {
	return c.writer.WriteFrame(msgStepTime + " " + strconv.FormatFloat(seconds, 'f', -1, 64))
}

func (c *channel) SendOK() error {
	return c.writer.WriteFrame(msgStepOK)
}

func (c *channel) SendError(err error) error {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	return c.writer.WriteFrame(msgStepError + " " + message)
}

// read returns the next frame from the orchestrator. Frames are read by a single background goroutine so that a
// cancelled context does not leave a half-read frame behind. A frame read after a cancellation is kept for the next
// call.
func (c *channel) read(ctx context.Context) (string, error) {
	c.startRead.Do(func() {
		go c.readLoop()
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", ErrClosed
	case result, ok := <-c.frames:
		if !ok {
			return "", io.EOF
		}
		return result.payload, result.err
	}
}

// readLoop runs until the input ends or the channel is closed.
func (c *channel) readLoop() {
	defer close(c.frames)
	for {
		payload, err := c.reader.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.deliver(frameResult{err: err})
			}
			return
		}
		if !c.deliver(frameResult{payload: payload}) {
			return
		}
	}
}

func (c *channel) deliver(result frameResult) bool {
	select {
	case c.frames <- result:
		return true
	case <-c.done:
		return false
	}
}

// cutCommand returns the argument of a message if it starts with the given command.
func cutCommand(message string, command string) (string, bool) {
	if message == command {
		return "", true
	}
	argument, ok := strings.CutPrefix(message, command+" ")
	return argument, ok
}

// decodeConfig decodes the handshake configuration. Non-string values are passed on in their JSON form so the
// config handler sees them unchanged.
func decodeConfig(rawConfig string) (map[string]string, error) {
	if strings.TrimSpace(rawConfig) == "" {
		return map[string]string{}, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(rawConfig), &decoded); err != nil {
		return nil, &ErrInvalidConfig{Cause: err}
	}
	return util.FlattenJSON(decoded), nil
}
