package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/arbiter/internal/clock"
	"github.com/viant/arbiter/model/state"
)

// Delta represents an incremental counter change. The fields are signed.
type Delta struct {
	Requests  int
	Grants    int
	Releases  int
	Withdrawn int
	Waiting   int
	Active    int
}

// DeltaOf returns the counter change caused by transition
func DeltaOf(transition state.Transition) Delta {
	switch {
	case transition.From == state.Idle && transition.To == state.Waiting:
		return Delta{Requests: 1, Waiting: 1}
	case transition.IsGrant():
		return Delta{Grants: 1, Waiting: -1, Active: 1}
	case transition.From == state.Active && transition.To == state.Idle:
		return Delta{Releases: 1, Active: -1}
	case transition.IsWithdrawal():
		return Delta{Withdrawn: 1, Waiting: -1}
	}
	return Delta{}
}

// Progress keeps aggregated counters for a single arbiter. It is safe for concurrent use.
type Progress struct {
	ArbiterID string
	Agents    int
	StartedAt time.Time

	Requests  int
	Grants    int
	Releases  int
	Withdrawn int
	Waiting   int
	Active    int
	// MaxHunger is the highest hunger observed at grant time
	MaxHunger int

	sync.Mutex
	onChange func(Progress)
}

// Observe applies the delta of transition and records grant hunger. If an
// onChange callback is registered it is invoked with a copy of the tracker
// outside the critical section.
func (p *Progress) Observe(transition state.Transition) {
	if p == nil {
		return
	}
	p.Lock()
	p.apply(DeltaOf(transition))
	if transition.IsGrant() && transition.Hunger > p.MaxHunger {
		p.MaxHunger = transition.Hunger
	}
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

func (p *Progress) apply(d Delta) {
	p.Requests += d.Requests
	p.Grants += d.Grants
	p.Releases += d.Releases
	p.Withdrawn += d.Withdrawn
	p.Waiting += d.Waiting
	p.Active += d.Active
}

// copy must be called with the lock held
func (p *Progress) copy() Progress {
	return Progress{
		ArbiterID: p.ArbiterID,
		Agents:    p.Agents,
		StartedAt: p.StartedAt,
		Requests:  p.Requests,
		Grants:    p.Grants,
		Releases:  p.Releases,
		Withdrawn: p.Withdrawn,
		Waiting:   p.Waiting,
		Active:    p.Active,
		MaxHunger: p.MaxHunger,
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every update. Passing nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

// New creates a tracker
func New(arbiterID string, agents int) *Progress {
	return &Progress{ArbiterID: arbiterID, Agents: agents, StartedAt: clock.Now()}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds tracker in a derived context
func WithTracker(ctx context.Context, tracker *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// GetSnapshot combines FromContext and Snapshot.
func GetSnapshot(ctx context.Context) (Progress, bool) {
	if tr, ok := FromContext(ctx); ok {
		return tr.Snapshot(), true
	}
	return Progress{}, false
}
