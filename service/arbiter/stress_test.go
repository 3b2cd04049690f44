package arbiter

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/arbiter/model/state"
	"github.com/viant/arbiter/policy"
)

func TestArbiter_AllRequestAtOnce(t *testing.T) {
	for _, agents := range []int{3, 4, 5, 8} {
		arb, err := New(agents)
		require.NoError(t, err)
		ctx := context.Background()

		granted := make(chan int, agents)
		for i := 0; i < agents; i++ {
			go func(i int) {
				if err := arb.Request(ctx, i); err == nil {
					granted <- i
				}
			}(i)
		}
		assert.Eventually(t, func() bool {
			for _, s := range arb.Snapshot() {
				if s.IsIdle() {
					return false
				}
			}
			return true
		}, waitFor, time.Millisecond, "agents: %d", agents)

		snapshot := arb.Snapshot()
		active := state.CountActive(snapshot)
		exclusive, _, _ := state.Exclusive(snapshot)
		assert.True(t, exclusive, "agents: %d %v", agents, snapshot)
		assert.GreaterOrEqual(t, active, 1, "agents: %d", agents)
		assert.LessOrEqual(t, active, agents/2, "agents: %d", agents)

		served := 0
		for served < agents {
			select {
			case i := <-granted:
				snapshot := arb.Snapshot()
				exclusive, _, _ := state.Exclusive(snapshot)
				assert.True(t, exclusive, "%v", snapshot)
				require.NoError(t, arb.Release(i))
				served++
			case <-time.After(waitFor):
				t.Fatalf("agents: %d, served %d, states %v", agents, served, arb.Snapshot())
			}
		}
	}
}

// forks models the resources between agents; fork i sits between agent i and agent i+1
type forks []int32

func (f forks) take(i, n int) bool {
	left, right := state.Left(i, n), i
	if !atomic.CompareAndSwapInt32(&f[left], 0, 1) {
		return false
	}
	if !atomic.CompareAndSwapInt32(&f[right], 0, 1) {
		atomic.StoreInt32(&f[left], 0)
		return false
	}
	return true
}

func (f forks) put(i, n int) {
	atomic.StoreInt32(&f[state.Left(i, n)], 0)
	atomic.StoreInt32(&f[i], 0)
}

func TestArbiter_Stress(t *testing.T) {
	testCases := []struct {
		description string
		agents      int
		rounds      int
		policy      *policy.Policy
	}{
		{description: "default policy", agents: 5, rounds: 300, policy: policy.Default(5)},
		{description: "tight threshold", agents: 7, rounds: 300, policy: &policy.Policy{Threshold: 1}},
		{description: "textbook rule", agents: 5, rounds: 300},
		{description: "two agents", agents: 2, rounds: 300, policy: policy.Default(2)},
		{description: "bounded wait", agents: 6, rounds: 300, policy: &policy.Policy{Threshold: 3, MaxWaitRounds: 2}},
	}
	for _, testCase := range testCases {
		var mux sync.Mutex
		var transitions []state.Transition
		arb, err := New(testCase.agents, WithPolicy(testCase.policy), WithListener(func(transition state.Transition) {
			mux.Lock()
			transitions = append(transitions, transition)
			mux.Unlock()
		}))
		require.NoError(t, err, testCase.description)

		table := make(forks, testCase.agents)
		var collisions, meals, expired int32
		var wg sync.WaitGroup
		for i := 0; i < testCase.agents; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for round := 0; round < testCase.rounds; round++ {
					if err := arb.Request(context.Background(), i); err != nil {
						assert.ErrorIs(t, err, ErrWaitBoundExceeded)
						atomic.AddInt32(&expired, 1)
						continue
					}
					if !table.take(i, testCase.agents) {
						atomic.AddInt32(&collisions, 1)
					} else {
						atomic.AddInt32(&meals, 1)
						table.put(i, testCase.agents)
					}
					assert.NoError(t, arb.Release(i))
				}
			}(i)
		}
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			t.Fatalf("%s: agents did not finish, states %v", testCase.description, arb.Snapshot())
		}

		assert.EqualValues(t, 0, collisions, testCase.description)
		assert.EqualValues(t, testCase.agents*testCase.rounds, meals+expired, testCase.description)
		for _, s := range arb.Snapshot() {
			assert.Equal(t, state.Idle, s, testCase.description)
		}

		// replaying transitions in sequence order never shows two adjacent active agents
		mux.Lock()
		sort.Slice(transitions, func(i, j int) bool { return transitions[i].Seq < transitions[j].Seq })
		replay := make([]state.State, testCase.agents)
		for i := range replay {
			replay[i] = state.Idle
		}
		for k, transition := range transitions {
			require.EqualValues(t, k+1, transition.Seq, testCase.description)
			require.Equal(t, replay[transition.Agent], transition.From, testCase.description)
			replay[transition.Agent] = transition.To
			exclusive, left, right := state.Exclusive(replay)
			require.True(t, exclusive, "%s: agents %d and %d active at seq %d", testCase.description, left, right, transition.Seq)
			if transition.IsGrant() && testCase.policy.Guarded() {
				require.LessOrEqual(t, transition.Hunger, testCase.policy.Threshold, "%s: agent %d granted at seq %d", testCase.description, transition.Agent, transition.Seq)
			}
		}
		mux.Unlock()
	}
}
