// Package progress keeps aggregated arbitration counters (requests, grants,
// releases, withdrawals, agents currently waiting or active) for one arbiter.
// The tracker can travel in a context so drivers can inspect it
// without a global registry.
package progress
