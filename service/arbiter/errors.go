package arbiter

import "github.com/pkg/errors"

var (
	// ErrInvalidAgent is returned when an agent index is outside [0, n)
	ErrInvalidAgent = errors.New("invalid agent")
	// ErrProtocolViolation is returned when request or release is called from an illegal state
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrWaitBoundExceeded is returned when a bounded request stayed waiting too long; the caller may retry
	ErrWaitBoundExceeded = errors.New("wait bound exceeded")
)
