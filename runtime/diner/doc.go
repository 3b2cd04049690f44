// Package diner runs the agent lifecycle around an arbiter: every agent
// thinks, requests its resources, uses them and releases them, for a fixed
// number of rounds or until the context is cancelled. Agents run as
// goroutines of one errgroup, so the first unexpected error stops the table.
package diner
