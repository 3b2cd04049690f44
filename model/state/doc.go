// Package state defines the per-agent arbitration states, the ring topology
// helpers and the transition record emitted on every state change.
package state
