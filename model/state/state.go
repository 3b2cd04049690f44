package state

// State represents the arbitration state of a single agent
type State string

const (
	// Idle agent is not requesting its resources
	Idle State = "idle"
	// Waiting agent has requested its resources and has not been granted yet
	Waiting State = "waiting"
	// Active agent holds both resources it shares with its neighbours
	Active State = "active"
)

// IsIdle returns true when the agent is not requesting
func (s State) IsIdle() bool {
	return s == Idle
}

// IsWaiting returns true when the agent is blocked on a grant
func (s State) IsWaiting() bool {
	return s == Waiting
}

// IsActive returns true when the agent holds its resources
func (s State) IsActive() bool {
	return s == Active
}

// CanTransit returns true if from -> to is a legal transition.
// Waiting -> Idle is legal only as a withdrawal (cancelled or expired request).
func CanTransit(from, to State) bool {
	switch from {
	case Idle:
		return to == Waiting
	case Waiting:
		return to == Active || to == Idle
	case Active:
		return to == Idle
	}
	return false
}
