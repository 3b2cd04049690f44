package arbiter

import (
	"github.com/viant/arbiter/internal/logging"
	"github.com/viant/arbiter/policy"
	core "github.com/viant/arbiter/service/arbiter"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option is used to customise the Service
type Option func(s *Service)

// WithConfig replaces the whole configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithAgents sets the ring size
func WithAgents(n int) Option {
	return func(s *Service) {
		s.config.Agents = n
	}
}

// WithPolicy sets the starvation policy; nil selects the textbook rule
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		if p == nil {
			p = &policy.Policy{}
		}
		s.config.Policy = policy.ToConfig(p)
	}
}

// WithEvents enables or disables the transition event stream
func WithEvents(enabled bool, queueBuffer int) Option {
	return func(s *Service) {
		s.config.Events.Enabled = enabled
		s.config.Events.QueueBuffer = queueBuffer
	}
}

// WithListener registers a transition listener called synchronously after
// every state change; it must not block
func WithListener(l core.Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, l)
	}
}

// WithTracing enables OpenTelemetry tracing using the stdout exporter.
// outputFile may be empty to write spans to stdout.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.config.Tracing = TracingConfig{
			Enabled: true,
			Service: serviceName,
			Version: serviceVersion,
			Output:  outputFile,
		}
	}
}

// WithTracingExporter enables tracing with a custom exporter
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.config.Tracing.Enabled = true
		s.config.Tracing.Service = serviceName
		s.config.Tracing.Version = serviceVersion
		s.exporter = exporter
	}
}

// WithLogger sets the service logger
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithID sets the arbiter identifier used in logs, events and progress
func WithID(id string) Option {
	return func(s *Service) {
		s.id = id
	}
}
