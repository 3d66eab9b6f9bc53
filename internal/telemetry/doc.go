// Package telemetry initializes the OpenTelemetry SDK, wiring the
// global TracerProvider and MeterProvider to an OTLP gRPC endpoint.
// When telemetry is disabled, noop providers are used and nothing
// connects to external services.
package telemetry
