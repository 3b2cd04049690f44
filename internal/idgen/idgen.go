package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier. Override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier
func New() string { return NewFunc() }

// Valid returns true if id parses as a UUID
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
