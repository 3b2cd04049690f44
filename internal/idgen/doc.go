// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Identifiers name arbiter instances and queue messages; callers must treat
// them as opaque strings.
package idgen
