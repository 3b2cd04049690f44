package diner

import (
	"fmt"
	"time"
)

// Config controls the agent loop
type Config struct {
	// Rounds is the number of times every agent uses its resources; 0 runs until cancelled
	Rounds    int           `json:"rounds" yaml:"rounds"`
	ThinkTime time.Duration `json:"thinkTime" yaml:"thinkTime"`
	UseTime   time.Duration `json:"useTime" yaml:"useTime"`
}

// DefaultConfig returns the default agent loop settings
func DefaultConfig() Config {
	return Config{
		Rounds:    3,
		ThinkTime: 10 * time.Millisecond,
		UseTime:   10 * time.Millisecond,
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c.Rounds < 0 {
		return fmt.Errorf("driver.rounds must be >= 0")
	}
	if c.ThinkTime < 0 || c.UseTime < 0 {
		return fmt.Errorf("driver.thinkTime and driver.useTime must be >= 0")
	}
	return nil
}
