package config

import (
	"go.arcalot.io/log/v2"
)

// Config is the main configuration structure of the monitor. The orchestrator supplies its own, opaque configuration
// during the handshake; this structure only configures the monitor process itself.
type Config struct {
	// Log configures the local logging of the monitor. Logs always go to the standard error because the standard
	// output carries the orchestrator protocol.
	Log log.Config `json:"log" yaml:"log"`
	// Steps lists the built-in steps the monitor offers. If empty, all built-in steps are offered.
	Steps []string `json:"steps" yaml:"steps"`
	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Listen is the address the /metrics endpoint listens on, for example ":9090". Metrics are not served if empty.
	Listen string `json:"listen" yaml:"listen"`
}
