// Package metrics exposes step execution counters and durations in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "go.arcalot.io/log/v2"
)

// Recorder receives the outcome of every executed step.
type Recorder interface {
	// StepFinished records a finished step with its outcome and the time spent executing it.
	StepFinished(name string, outcome string, duration time.Duration)
}

// Discard is a Recorder that ignores everything.
var Discard Recorder = discard{}

type discard struct{}

func (discard) StepFinished(_ string, _ string, _ time.Duration) {}

// Metrics holds the step collectors on a dedicated registry, so several monitors in one process (as in tests) do not
// collide on the default registry.
type Metrics struct {
	registry *prometheus.Registry
	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stepmonitor",
				Name:      "steps_total",
				Help:      "Total number of executed steps by step name and outcome.",
			},
			[]string{"step", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stepmonitor",
				Name:      "step_duration_seconds",
				Help:      "Wall clock duration of step executions in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step"},
		),
	}
	m.registry.MustRegister(m.steps, m.duration)
	return m
}

// StepFinished records a finished step.
func (m *Metrics) StepFinished(name string, outcome string, duration time.Duration) {
	m.steps.WithLabelValues(name, outcome).Inc()
	m.duration.WithLabelValues(name).Observe(duration.Seconds())
}

// Steps returns the step counter, mainly for inspection in tests.
func (m *Metrics) Steps() *prometheus.CounterVec {
	return m.steps
}

// Handler returns the HTTP handler serving the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes the metrics on /metrics at the given address until the context is cancelled.
func (m *Metrics) Serve(ctx context.Context, listen string, logger log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Infof("Serving metrics on %s/metrics", listen)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warningf("Failed to shut down metrics server (%v)", err)
		}
		return nil
	}
}
