// Package telemetry wires Prometheus metrics and OpenTelemetry tracing into the
// coordinator lifecycle hooks.
package telemetry
