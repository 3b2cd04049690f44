// Package tracing integrates OpenTelemetry with the arbiter so request and
// release calls can be observed as spans. Applications which do not need
// tracing never call Init and every span becomes a no-op.
package tracing
