package event

import (
	"time"

	"github.com/viant/arbiter/internal/clock"
)

// Context identifies the source of an event
type Context struct {
	ArbiterID string `json:"arbiterID"`
	Agent     int    `json:"agent"`
	EventType string `json:"eventType"`
}

// Event wraps a payload with its source and creation time
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
