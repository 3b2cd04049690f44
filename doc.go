// Package arbiter provides a concurrency-control kernel that schedules N
// agents sitting in a ring, each needing the two resources it shares with its
// neighbours, so that no two neighbours hold a shared resource at once and
// every requesting agent is eventually served.
//
// The core engine lives in service/arbiter. This package wraps it in a
// Service façade that adds configuration, structured logging, tracing,
// progress counters and a transition event stream:
//
//	srv, _ := arbiter.New(arbiter.WithAgents(5))
//	defer srv.Close()
//	if err := srv.Request(ctx, i); err != nil {
//		return err
//	}
//	defer srv.Release(ctx, i)
//
// The agent loop that drives a whole table lives in runtime/diner.
package arbiter
