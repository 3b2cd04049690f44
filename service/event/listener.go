package event

import (
	"context"

	"github.com/viant/arbiter/internal/logging"
)

// Listener consumes events in its own goroutine until stopped
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewListener creates a listener
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Stop stops consuming and waits for the running handler to return
func (l *Listener[T]) Stop() {
	l.cancel()
	<-l.done
}

// Start starts consuming
func (l *Listener[T]) Start() {
	go func() {
		defer close(l.done)
		for {
			event, err := l.publisher.Consume(l.ctx)
			if l.ctx.Err() != nil {
				return
			}
			if err != nil {
				logging.New("event").WithError(err).Warn("failed to consume event")
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
