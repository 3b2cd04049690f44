package arbiter

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/arbiter/policy"
	"github.com/viant/arbiter/runtime/diner"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the arbiter configuration.
// Sections missing from a loaded document keep their DefaultConfig values.
// A nil Policy selects policy.Default for the configured ring size; an empty
// Policy selects the textbook rule.
type Config struct {
	Agents  int            `json:"agents" yaml:"agents"`
	Policy  *policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
	Events  EventsConfig   `json:"events" yaml:"events"`
	Driver  diner.Config   `json:"driver" yaml:"driver"`
	Tracing TracingConfig  `json:"tracing" yaml:"tracing"`
	Log     LogConfig      `json:"log" yaml:"log"`
}

// EventsConfig controls the transition event stream
type EventsConfig struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	QueueBuffer int  `json:"queueBuffer" yaml:"queueBuffer"`
}

// TracingConfig controls OpenTelemetry spans around request and release
type TracingConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
}

// LogConfig controls the root logger
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	JSON  bool   `json:"json,omitempty" yaml:"json,omitempty"`
}

// DefaultAgents is the ring size used when none is configured
const DefaultAgents = 5

// DefaultConfig returns a Config populated with default values. Callers may
// modify the returned struct before passing it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Agents: DefaultAgents,
		Events: EventsConfig{
			Enabled:     true,
			QueueBuffer: 1024,
		},
		Driver: diner.DefaultConfig(),
		Tracing: TracingConfig{
			Service: "arbiter",
			Version: "0.1.0",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Agents < 2 {
		return fmt.Errorf("agents must be >= 2, got %d", c.Agents)
	}
	if err := c.policy().Validate(); err != nil {
		return err
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("invalid log.level: %w", err)
		}
	}
	if c.Events.QueueBuffer < 0 {
		return fmt.Errorf("events.queueBuffer must be >= 0")
	}
	return c.Driver.Validate()
}

func (c *Config) policy() *policy.Policy {
	if c.Policy == nil {
		return policy.Default(c.Agents)
	}
	return policy.FromConfig(c.Policy)
}

// LoadConfig reads a YAML (or JSON) configuration from any afs supported URL
// on top of DefaultConfig.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
