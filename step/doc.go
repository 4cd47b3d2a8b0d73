// Package step provides the abstract definition of a monitor step. Steps are named probes that the orchestrator
// asks the monitor to execute one at a time. Implementations are registered by name in a Registry at startup and
// are never modified afterwards.
package step
