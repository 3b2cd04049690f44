// Package arbiter implements the resource arbitration engine for agents
// arranged in a ring, where every agent shares one resource with each of its
// two neighbours.
//
// An agent calls Request before using its resources and Release afterwards.
// All state lives in a single Arbiter guarded by one mutex; every agent owns a
// wait channel the arbiter signals when it promotes that agent to active.
// A blocked request re-acquires the mutex after each wake up and re-tests its
// state, so spurious signals are harmless.
//
// Starvation is bounded by a per-agent hunger counter: every neighbour release
// that leaves an agent waiting increments it, and once it reaches the policy
// threshold the agent starts starving and no neighbour that starts starving
// later, or not at all, can be promoted before it. A granted agent therefore
// never has a hunger above the threshold.
//
//	arb, _ := arbiter.New(5)
//	if err := arb.Request(ctx, i); err != nil {
//		return err
//	}
//	defer arb.Release(i)
package arbiter
