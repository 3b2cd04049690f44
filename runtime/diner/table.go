package diner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/viant/arbiter/internal/logging"
	"github.com/viant/arbiter/progress"
	"github.com/viant/arbiter/service/arbiter"
	"golang.org/x/sync/errgroup"
)

// Arbiter grants agents their resources
type Arbiter interface {
	Size() int
	Request(ctx context.Context, agent int) error
	Release(ctx context.Context, agent int) error
}

// Option customises the table
type Option func(t *Table)

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithUseHook sets a function called while an agent holds its resources
func WithUseHook(hook func(agent int)) Option {
	return func(t *Table) {
		t.onUse = hook
	}
}

// Table runs one goroutine per agent
type Table struct {
	arbiter Arbiter
	config  Config
	logger  logging.Logger
	onUse   func(agent int)
	uses    []int64
	retries []int64
}

// Uses returns how many times each agent used its resources
func (t *Table) Uses() []int {
	return load(t.uses)
}

// Retries returns how many requests of each agent expired and were retried
func (t *Table) Retries() []int {
	return load(t.retries)
}

// Run runs all agents until they finish their rounds or ctx is cancelled.
// Cancellation is a graceful stop and returns nil. When ctx carries a
// progress tracker its final counters are logged.
func (t *Table) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < t.arbiter.Size(); i++ {
		agent := i
		group.Go(func() error {
			return t.dine(groupCtx, agent)
		})
	}
	err := group.Wait()
	if summary, ok := progress.GetSnapshot(ctx); ok {
		t.logger.WithFields(map[string]interface{}{
			"requests":  summary.Requests,
			"grants":    summary.Grants,
			"withdrawn": summary.Withdrawn,
			"maxHunger": summary.MaxHunger,
		}).Info("table finished")
	}
	return err
}

func (t *Table) dine(ctx context.Context, agent int) error {
	log := t.logger.WithField("agent", agent)
	for round := 0; t.config.Rounds == 0 || round < t.config.Rounds; {
		log.Debug("thinking")
		if !pause(ctx, t.config.ThinkTime) {
			return nil
		}
		err := t.arbiter.Request(ctx, agent)
		switch {
		case errors.Is(err, arbiter.ErrWaitBoundExceeded):
			atomic.AddInt64(&t.retries[agent], 1)
			log.WithError(err).Info("request expired, retrying")
			continue
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil:
			return err
		}
		log.WithField("round", round).Debug("using resources")
		if t.onUse != nil {
			t.onUse(agent)
		}
		// resources are returned even when the table is being stopped
		pause(ctx, t.config.UseTime)
		if err = t.arbiter.Release(context.Background(), agent); err != nil {
			return err
		}
		atomic.AddInt64(&t.uses[agent], 1)
		round++
		if ctx.Err() != nil {
			return nil
		}
	}
	log.Debug("done")
	return nil
}

// pause sleeps for d; it returns false if ctx was cancelled first
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func load(values []int64) []int {
	ret := make([]int, len(values))
	for i := range values {
		ret[i] = int(atomic.LoadInt64(&values[i]))
	}
	return ret
}

// New creates a table for arb
func New(arb Arbiter, config Config, opts ...Option) (*Table, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Table{
		arbiter: arb,
		config:  config,
		logger:  logging.New("diner"),
		uses:    make([]int64, arb.Size()),
		retries: make([]int64, arb.Size()),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}
