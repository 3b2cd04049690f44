package state

import "time"

// Transition records a single agent state change.
// Seq is assigned under the arbiter lock and is strictly increasing per arbiter,
// so observers receiving transitions concurrently can restore their order.
type Transition struct {
	Seq    uint64    `json:"seq" yaml:"seq"`
	Agent  int       `json:"agent" yaml:"agent"`
	From   State     `json:"from" yaml:"from"`
	To     State     `json:"to" yaml:"to"`
	Hunger int       `json:"hunger,omitempty" yaml:"hunger,omitempty"`
	At     time.Time `json:"at" yaml:"at"`
}

// IsGrant returns true for a waiting -> active transition
func (t *Transition) IsGrant() bool {
	return t.From == Waiting && t.To == Active
}

// IsWithdrawal returns true for a waiting -> idle transition
func (t *Transition) IsWithdrawal() bool {
	return t.From == Waiting && t.To == Idle
}
