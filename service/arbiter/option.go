package arbiter

import (
	"github.com/viant/arbiter/model/state"
	"github.com/viant/arbiter/policy"
)

// Listener is invoked for every state transition, outside the arbiter lock,
// in the goroutine that caused the transition. Transitions delivered to
// concurrent goroutines may interleave; Seq restores their order.
type Listener func(transition state.Transition)

// Option is used to customise the arbiter instance.
type Option func(a *Arbiter)

// WithPolicy overrides the default starvation policy. Passing nil selects the
// textbook rule without guard and without wait bound.
func WithPolicy(p *policy.Policy) Option {
	return func(a *Arbiter) {
		a.policy = p
	}
}

// WithListener sets the transition listener
func WithListener(l Listener) Option {
	return func(a *Arbiter) {
		a.listener = l
	}
}
