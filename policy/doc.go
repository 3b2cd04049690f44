// Package policy defines the starvation policy applied by the arbiter when it
// chooses which waiting agent to promote, and the optional bound on how long a
// request may stay waiting before it is expired.
package policy
