package arbiter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/arbiter/policy"
)

func TestLoadConfig(t *testing.T) {
	testCases := []struct {
		description string
		content     string
		expect      func(t *testing.T, cfg *Config)
		shouldError bool
	}{
		{
			description: "partial document keeps defaults",
			content:     "agents: 7\n",
			expect: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7, cfg.Agents)
				assert.Equal(t, &policy.Policy{Threshold: 7}, cfg.policy())
				assert.True(t, cfg.Events.Enabled)
				assert.Equal(t, 1024, cfg.Events.QueueBuffer)
				assert.Equal(t, 3, cfg.Driver.Rounds)
				assert.Equal(t, "info", cfg.Log.Level)
			},
		},
		{
			description: "full document",
			content: `agents: 3
policy:
  threshold: 2
  maxWaitRounds: 4
events:
  enabled: false
driver:
  rounds: 10
  thinkTime: 5ms
  useTime: 1ms
tracing:
  enabled: true
  output: spans.json
log:
  level: debug
  json: true
`,
			expect: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Agents)
				assert.Equal(t, &policy.Policy{Threshold: 2, MaxWaitRounds: 4}, cfg.policy())
				assert.False(t, cfg.Events.Enabled)
				assert.Equal(t, 10, cfg.Driver.Rounds)
				assert.Equal(t, 5*time.Millisecond, cfg.Driver.ThinkTime)
				assert.Equal(t, time.Millisecond, cfg.Driver.UseTime)
				assert.True(t, cfg.Tracing.Enabled)
				assert.Equal(t, "spans.json", cfg.Tracing.Output)
				assert.Equal(t, "arbiter", cfg.Tracing.Service)
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.True(t, cfg.Log.JSON)
			},
		},
		{
			description: "empty policy is the textbook rule",
			content:     "policy: {}\n",
			expect: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.policy().Guarded())
				assert.False(t, cfg.policy().Bounded())
			},
		},
		{
			description: "single agent",
			content:     "agents: 1\n",
			shouldError: true,
		},
		{
			description: "negative threshold",
			content:     "policy:\n  threshold: -1\n",
			shouldError: true,
		},
		{
			description: "unknown log level",
			content:     "log:\n  level: loud\n",
			shouldError: true,
		},
		{
			description: "malformed",
			content:     "agents: [",
			shouldError: true,
		},
	}

	for _, testCase := range testCases {
		URL := filepath.Join(t.TempDir(), "arbiter.yaml")
		require.NoError(t, os.WriteFile(URL, []byte(testCase.content), 0o644), testCase.description)
		cfg, err := LoadConfig(context.Background(), URL)
		if testCase.shouldError {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		testCase.expect(t, cfg)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(cfg *Config)
		shouldError bool
	}{
		{description: "default", mutate: func(cfg *Config) {}},
		{description: "two agents", mutate: func(cfg *Config) { cfg.Agents = 2 }},
		{description: "no agents", mutate: func(cfg *Config) { cfg.Agents = 0 }, shouldError: true},
		{description: "negative wait bound", mutate: func(cfg *Config) { cfg.Policy = &policy.Config{MaxWaitRounds: -1} }, shouldError: true},
		{description: "negative buffer", mutate: func(cfg *Config) { cfg.Events.QueueBuffer = -1 }, shouldError: true},
		{description: "negative rounds", mutate: func(cfg *Config) { cfg.Driver.Rounds = -1 }, shouldError: true},
		{description: "debug level", mutate: func(cfg *Config) { cfg.Log.Level = "debug" }},
		{description: "empty level", mutate: func(cfg *Config) { cfg.Log.Level = "" }},
		{description: "unknown level", mutate: func(cfg *Config) { cfg.Log.Level = "verbose" }, shouldError: true},
	}
	for _, testCase := range testCases {
		cfg := DefaultConfig()
		testCase.mutate(cfg)
		err := cfg.Validate()
		if testCase.shouldError {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}
