package arbiter

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/arbiter/internal/clock"
	"github.com/viant/arbiter/model/state"
	"github.com/viant/arbiter/policy"
)

// Arbiter grants agents in a ring exclusive access to the resources they share
// with their neighbours.
type Arbiter struct {
	mux     sync.Mutex
	size    int
	states  []state.State
	hunger  []int
	bounds  []int
	signals []chan struct{}
	seq     uint64
	// starved orders waiting agents that reached the threshold; 0 means not starving
	starved    []uint64
	starvedSeq uint64
	policy     *policy.Policy
	listener   Listener
}

// Size returns the number of agents
func (a *Arbiter) Size() int {
	return a.size
}

// Policy returns the starvation policy
func (a *Arbiter) Policy() *policy.Policy {
	return a.policy
}

// State returns the current state of agent i
func (a *Arbiter) State(i int) (state.State, error) {
	if err := a.checkAgent(i); err != nil {
		return "", err
	}
	a.mux.Lock()
	defer a.mux.Unlock()
	return a.states[i], nil
}

// Hunger returns the number of neighbour release cycles agent i has been
// passed over in its current request.
func (a *Arbiter) Hunger(i int) (int, error) {
	if err := a.checkAgent(i); err != nil {
		return 0, err
	}
	a.mux.Lock()
	defer a.mux.Unlock()
	return a.hunger[i], nil
}

// Snapshot returns a consistent copy of all agent states
func (a *Arbiter) Snapshot() []state.State {
	a.mux.Lock()
	defer a.mux.Unlock()
	return append([]state.State(nil), a.states...)
}

// Request blocks until agent i is active. It fails immediately with
// ErrProtocolViolation unless agent i is idle.
//
// When ctx is done before the grant, the request is withdrawn and ctx.Err()
// is returned. When the wait bound is exceeded, the request is withdrawn and
// ErrWaitBoundExceeded is returned. A grant that races either condition wins.
func (a *Arbiter) Request(ctx context.Context, i int) error {
	if err := a.checkAgent(i); err != nil {
		return err
	}
	bound := 0
	if a.policy.Bounded() {
		bound = a.policy.MaxWaitRounds
	}
	if rounds, ok := policy.WaitBoundFromContext(ctx); ok {
		bound = rounds
	}

	a.mux.Lock()
	if current := a.states[i]; !current.IsIdle() {
		a.mux.Unlock()
		return errors.Wrapf(ErrProtocolViolation, "request by agent %d in state %s", i, current)
	}
	events := a.transit(nil, i, state.Waiting)
	a.bounds[i] = bound
	events = a.tryPromote(events, i)

	for !a.states[i].IsActive() {
		if a.expired(i) {
			events = a.withdraw(events, i)
			a.mux.Unlock()
			a.emit(events)
			return errors.Wrapf(ErrWaitBoundExceeded, "agent %d waited more than %d rounds", i, bound)
		}
		a.mux.Unlock()
		a.emit(events)
		events = nil

		select {
		case <-a.signals[i]:
		case <-ctx.Done():
		}

		a.mux.Lock()
		if err := ctx.Err(); err != nil && !a.states[i].IsActive() {
			events = a.withdraw(events, i)
			a.mux.Unlock()
			a.emit(events)
			return err
		}
	}
	a.bounds[i] = 0
	a.drain(i)
	a.mux.Unlock()
	a.emit(events)
	return nil
}

// Release returns the resources held by agent i and promotes eligible
// neighbours. It fails with ErrProtocolViolation unless agent i is active.
func (a *Arbiter) Release(i int) error {
	if err := a.checkAgent(i); err != nil {
		return err
	}
	a.mux.Lock()
	if current := a.states[i]; !current.IsActive() {
		a.mux.Unlock()
		return errors.Wrapf(ErrProtocolViolation, "release by agent %d in state %s", i, current)
	}
	events := a.transit(nil, i, state.Idle)
	neighbours := a.neighbours(i)
	for _, n := range neighbours {
		events = a.tryPromote(events, n)
	}
	for _, n := range neighbours {
		if !a.states[n].IsWaiting() {
			continue
		}
		a.hunger[n]++
		a.markStarving(n)
		if a.expired(n) {
			a.signal(n)
			continue
		}
		// a newly starving agent may now outrank the neighbour that held it back
		events = a.tryPromote(events, n)
	}
	a.mux.Unlock()
	a.emit(events)
	return nil
}

// tryPromote makes agent i active if it is waiting, neither neighbour is
// active and no starving neighbour outranks it. Must be called with mux held.
func (a *Arbiter) tryPromote(events []state.Transition, i int) []state.Transition {
	if !a.states[i].IsWaiting() {
		return events
	}
	left, right := state.Left(i, a.size), state.Right(i, a.size)
	if a.states[left].IsActive() || a.states[right].IsActive() {
		return events
	}
	if a.yields(i, left) || a.yields(i, right) {
		return events
	}
	events = a.transit(events, i, state.Active)
	a.hunger[i] = 0
	a.starved[i] = 0
	a.signal(i)
	return events
}

// yields returns true if waiting agent i must give way to starving neighbour n
func (a *Arbiter) yields(i, n int) bool {
	if n == i || !a.states[n].IsWaiting() {
		return false
	}
	return a.starved[n] != 0 && a.outranks(n, i)
}

// outranks orders waiting agents for promotion. Starving agents come first,
// in the order they started starving; the rest follow policy.Outranks.
func (a *Arbiter) outranks(x, y int) bool {
	sx, sy := a.starved[x], a.starved[y]
	switch {
	case sx != 0 && sy != 0:
		return sx < sy
	case sx != 0 || sy != 0:
		return sx != 0
	}
	return policy.Outranks(x, a.hunger[x], y, a.hunger[y])
}

// markStarving stamps agent i once its hunger reaches the threshold
func (a *Arbiter) markStarving(i int) {
	if a.starved[i] != 0 || !a.policy.Starving(a.hunger[i]) {
		return
	}
	a.starvedSeq++
	a.starved[i] = a.starvedSeq
}

// withdraw returns waiting agent i to idle and re-tests neighbours it may have been holding back
func (a *Arbiter) withdraw(events []state.Transition, i int) []state.Transition {
	events = a.transit(events, i, state.Idle)
	a.hunger[i] = 0
	a.starved[i] = 0
	a.bounds[i] = 0
	a.drain(i)
	for _, n := range a.neighbours(i) {
		events = a.tryPromote(events, n)
	}
	return events
}

func (a *Arbiter) expired(i int) bool {
	bound := policy.Policy{MaxWaitRounds: a.bounds[i]}
	return bound.Expired(a.hunger[i])
}

// neighbours returns the distinct neighbours of i, highest rank first
func (a *Arbiter) neighbours(i int) []int {
	left, right := state.Left(i, a.size), state.Right(i, a.size)
	if left == right {
		return []int{left}
	}
	if a.outranks(right, left) {
		return []int{right, left}
	}
	return []int{left, right}
}

func (a *Arbiter) transit(events []state.Transition, i int, to state.State) []state.Transition {
	from := a.states[i]
	if !state.CanTransit(from, to) {
		panic(fmt.Sprintf("arbiter: illegal transition of agent %d from %s to %s", i, from, to))
	}
	a.states[i] = to
	a.seq++
	return append(events, state.Transition{
		Seq:    a.seq,
		Agent:  i,
		From:   from,
		To:     to,
		Hunger: a.hunger[i],
		At:     clock.Now(),
	})
}

func (a *Arbiter) signal(i int) {
	select {
	case a.signals[i] <- struct{}{}:
	default:
	}
}

func (a *Arbiter) drain(i int) {
	select {
	case <-a.signals[i]:
	default:
	}
}

func (a *Arbiter) emit(events []state.Transition) {
	if a.listener == nil {
		return
	}
	for _, event := range events {
		a.listener(event)
	}
}

func (a *Arbiter) checkAgent(i int) error {
	if i < 0 || i >= a.size {
		return errors.Wrapf(ErrInvalidAgent, "agent %d outside [0, %d)", i, a.size)
	}
	return nil
}

// New creates an arbiter for n agents, all idle with zero hunger. The default
// policy uses a starvation threshold equal to n.
func New(n int, opts ...Option) (*Arbiter, error) {
	if n < 2 {
		return nil, errors.Errorf("arbiter requires at least 2 agents, got %d", n)
	}
	ret := &Arbiter{
		size:    n,
		states:  make([]state.State, n),
		hunger:  make([]int, n),
		bounds:  make([]int, n),
		starved: make([]uint64, n),
		signals: make([]chan struct{}, n),
		policy:  policy.Default(n),
	}
	for i := 0; i < n; i++ {
		ret.states[i] = state.Idle
		ret.signals[i] = make(chan struct{}, 1)
	}
	for _, opt := range opts {
		opt(ret)
	}
	if err := ret.policy.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
