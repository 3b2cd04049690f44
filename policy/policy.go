package policy

import (
	"context"
	"fmt"
)

// Policy represents starvation avoidance settings.
//
//   - Threshold is the number of neighbour release cycles after which a waiting
//     agent is considered starving; a starving agent cannot be overtaken by a
//     lower ranked neighbour. Zero disables the guard.
//   - MaxWaitRounds bounds the number of neighbour release cycles a request may
//     stay waiting; when exceeded the request fails. Zero means wait forever.
//
// A nil *Policy means the textbook rule: no guard and no bound.
type Policy struct {
	Threshold     int
	MaxWaitRounds int
}

// Config represents the serialisable part of a Policy.
type Config struct {
	Threshold     int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	MaxWaitRounds int `json:"maxWaitRounds,omitempty" yaml:"maxWaitRounds,omitempty"`
}

// Default returns the policy with threshold equal to the ring size
func Default(agents int) *Policy {
	return &Policy{Threshold: agents}
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{Threshold: p.Threshold, MaxWaitRounds: p.MaxWaitRounds}
}

// FromConfig converts a stored Config back to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{Threshold: c.Threshold, MaxWaitRounds: c.MaxWaitRounds}
}

// Validate returns an error describing invalid settings or nil.
func (p *Policy) Validate() error {
	if p == nil {
		return nil
	}
	if p.Threshold < 0 {
		return fmt.Errorf("policy.threshold must be >= 0, got %d", p.Threshold)
	}
	if p.MaxWaitRounds < 0 {
		return fmt.Errorf("policy.maxWaitRounds must be >= 0, got %d", p.MaxWaitRounds)
	}
	return nil
}

// Guarded returns true when the starvation guard is enabled
func (p *Policy) Guarded() bool {
	return p != nil && p.Threshold > 0
}

// Starving returns true if a waiting agent with the supplied hunger has
// reached the threshold.
func (p *Policy) Starving(hunger int) bool {
	return p.Guarded() && hunger >= p.Threshold
}

// Bounded returns true when requests have a wait bound
func (p *Policy) Bounded() bool {
	return p != nil && p.MaxWaitRounds > 0
}

// Expired returns true if a waiting agent with the supplied hunger has
// exceeded the wait bound.
func (p *Policy) Expired(hunger int) bool {
	return p.Bounded() && hunger > p.MaxWaitRounds
}

// Outranks returns true if agent a with hungerA has priority over agent b
// with hungerB. Higher hunger wins, ties go to the lower index. The order is
// strict and total so two agents never outrank each other.
func Outranks(a, hungerA, b, hungerB int) bool {
	if hungerA != hungerB {
		return hungerA > hungerB
	}
	return a < b
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithWaitBound embeds a per request wait bound in ctx. It overrides the
// arbiter level MaxWaitRounds for requests issued with the returned context.
func WithWaitBound(ctx context.Context, rounds int) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, rounds)
}

// WaitBoundFromContext extracts (rounds, ok).
func WaitBoundFromContext(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(ctxKey).(int)
	return v, ok
}
