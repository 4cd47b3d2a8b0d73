// Package main provides a monitor that offers the built-in probe steps to an orchestrator over stdin and stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"go.arcalot.io/log/v2"
	"go.flow.arcalot.io/stepmonitor"
	"go.flow.arcalot.io/stepmonitor/config"
	"go.flow.arcalot.io/stepmonitor/internal/metrics"
	"go.flow.arcalot.io/stepmonitor/internal/protocol/framed"
	"go.flow.arcalot.io/stepmonitor/internal/tableprinter"
	"go.flow.arcalot.io/stepmonitor/step/builtin"
)

// These variables are filled using ldflags during the build process with Goreleaser.
// See https://goreleaser.com/cookbooks/using-main.version/
var (
	version = "development"
	commit  = "unknown"
	date    = "unknown"
)

// ExitCodeOK signals that the orchestrator asked the monitor to exit.
const ExitCodeOK = 0

// ExitCodeInvalidData signals that the monitor configuration is invalid.
const ExitCodeInvalidData = 1

// ExitCodeHandshakeFailed indicates that the monitor could not complete the handshake with the orchestrator.
const ExitCodeHandshakeFailed = 2

// ExitCodeChannelFailed indicates that the connection to the orchestrator broke down while waiting for a step.
const ExitCodeChannelFailed = 3

func main() {
	// Stdout carries the orchestrator protocol, every log must go to stderr.
	tempLogger := log.New(log.Config{
		Level:       log.LevelInfo,
		Destination: log.DestinationStdout,
		Stdout:      os.Stderr,
	})

	configFile := ""
	printVersion := false
	listSteps := false

	flag.BoolVar(&printVersion, "version", printVersion, "Print the test monitor version and exit.")
	flag.BoolVar(&listSteps, "list-steps", listSteps, "List the steps the monitor offers and exit.")
	flag.StringVar(
		&configFile,
		"config",
		configFile,
		"The monitor configuration file to load, if any.",
	)
	flag.Usage = func() {
		_, _ = os.Stderr.Write([]byte(`Usage: test-monitor [OPTIONS]

The test monitor talks to the orchestrator on its standard input and output
and runs the built-in steps the orchestrator requests.

Options:

  -version            Print the test monitor version and exit.

  -list-steps         List the steps the monitor offers with the given
                      configuration and exit.

  -config FILENAME    The monitor configuration file to load, if any.
`))
	}
	flag.Parse()

	if printVersion {
		_, _ = fmt.Fprintf(
			os.Stderr,
			"Test Monitor\n"+
				"============\n"+
				"Version: %s\n"+
				"Commit: %s\n"+
				"Date: %s\n",
			version, commit, date,
		)
		return
	}

	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.LoadFile(configFile)
		if err != nil {
			tempLogger.Errorf("Failed to load configuration (%v)", err)
			flag.Usage()
			os.Exit(ExitCodeInvalidData)
		}
	}

	cfg.Log.Stdout = os.Stderr
	logger := log.New(cfg.Log).WithLabel("source", "main")

	if listSteps {
		os.Exit(printSteps(cfg, logger))
	}
	os.Exit(runMonitor(cfg, logger))
}

func printSteps(cfg *config.Config, logger log.Logger) int {
	registry, err := stepmonitor.NewDefaultStepRegistry(cfg.Steps, os.Stderr)
	if err != nil {
		logger.Errorf("Invalid step configuration (%v)", err)
		return ExitCodeInvalidData
	}
	tableprinter.PrintSteps(os.Stdout, registry.Names(), builtin.Descriptions())
	return ExitCodeOK
}

func runMonitor(cfg *config.Config, logger log.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	ctrlC := make(chan os.Signal, 3) // We expect up to two ctrl-C inputs. Plus one extra to buffer in case.
	signal.Notify(ctrlC, os.Interrupt)

	go handleOSInterrupt(ctrlC, cancel, logger)
	defer func() {
		close(ctrlC) // Ensure that the goroutine exits
		cancel()
	}()

	registry, err := stepmonitor.NewDefaultStepRegistry(cfg.Steps, os.Stderr)
	if err != nil {
		logger.Errorf("Invalid step configuration (%v)", err)
		return ExitCodeInvalidData
	}

	collector := metrics.New()
	if cfg.Metrics.Listen != "" {
		metricsLogger := logger.WithLabel("source", "metrics")
		go func() {
			if err := collector.Serve(ctx, cfg.Metrics.Listen, metricsLogger); err != nil {
				metricsLogger.Errorf("Metrics server failed (%v)", err)
			}
		}()
	}

	channel := framed.New(os.Stdin, os.Stdout, logger.WithLabel("source", "protocol"))
	defer func() {
		_ = channel.Close()
	}()
	monitor, err := stepmonitor.New(
		logger.WithLabel("source", "monitor"),
		channel,
		registry,
		stepmonitor.WithConfigHandler(func(_ context.Context, orchestratorConfig map[string]string) error {
			keys := make([]string, 0, len(orchestratorConfig))
			for key := range orchestratorConfig {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			logger.Debugf("Received orchestrator configuration with keys %v", keys)
			return nil
		}),
		stepmonitor.WithMetrics(collector),
	)
	if err != nil {
		logger.Errorf("Failed to initialize monitor (%v)", err)
		return ExitCodeInvalidData
	}

	err = monitor.Run(ctx)
	var handshakeFailed *stepmonitor.ErrHandshakeFailed
	var channelFailed *stepmonitor.ErrChannelFailed
	switch {
	case err == nil:
		return ExitCodeOK
	case errors.As(err, &handshakeFailed):
		logger.Errorf("Monitor failed to start (%v)", err)
		return ExitCodeHandshakeFailed
	case errors.As(err, &channelFailed):
		logger.Errorf("Monitor lost the orchestrator (%v)", err)
		return ExitCodeChannelFailed
	case errors.Is(err, context.Canceled):
		logger.Infof("Monitor interrupted.")
		return ExitCodeOK
	default:
		logger.Errorf("Monitor failed (%v)", err)
		return ExitCodeChannelFailed
	}
}

func handleOSInterrupt(ctrlC chan os.Signal, cancel context.CancelFunc, logger log.Logger) {
	_, ok := <-ctrlC
	if !ok {
		return
	}
	logger.Infof("Requesting graceful shutdown after the current step.")
	cancel()

	_, ok = <-ctrlC
	if !ok {
		return
	}
	logger.Warningf("Force exiting.")
	os.Exit(1)
}
