package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Starving(t *testing.T) {
	testCases := []struct {
		description string
		policy      *Policy
		hunger      int
		starving    bool
		expired     bool
	}{
		{description: "nil policy", policy: nil, hunger: 100},
		{description: "guard disabled", policy: &Policy{}, hunger: 100},
		{description: "below threshold", policy: &Policy{Threshold: 3}, hunger: 2},
		{description: "at threshold", policy: &Policy{Threshold: 3}, hunger: 3, starving: true},
		{description: "at wait bound", policy: &Policy{MaxWaitRounds: 2}, hunger: 2},
		{description: "past wait bound", policy: &Policy{Threshold: 1, MaxWaitRounds: 2}, hunger: 3, starving: true, expired: true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.starving, testCase.policy.Starving(testCase.hunger), testCase.description)
		assert.Equal(t, testCase.expired, testCase.policy.Expired(testCase.hunger), testCase.description)
	}
}

func TestOutranks(t *testing.T) {
	assert.True(t, Outranks(3, 2, 1, 1))
	assert.False(t, Outranks(1, 1, 3, 2))
	assert.True(t, Outranks(1, 2, 3, 2))
	assert.False(t, Outranks(3, 2, 1, 2))
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			if a == b {
				continue
			}
			assert.NotEqual(t, Outranks(a, 1, b, 1), Outranks(b, 1, a, 1))
		}
	}
}

func TestConfigConversion(t *testing.T) {
	assert.Nil(t, ToConfig(nil))
	assert.Nil(t, FromConfig(nil))
	p := &Policy{Threshold: 5, MaxWaitRounds: 7}
	assert.EqualValues(t, p, FromConfig(ToConfig(p)))
	assert.Error(t, (&Policy{Threshold: -1}).Validate())
	assert.Error(t, (&Policy{MaxWaitRounds: -1}).Validate())
	assert.NoError(t, Default(5).Validate())
	assert.Equal(t, 5, Default(5).Threshold)
}

func TestWaitBoundFromContext(t *testing.T) {
	_, ok := WaitBoundFromContext(context.Background())
	assert.False(t, ok)
	rounds, ok := WaitBoundFromContext(WithWaitBound(context.Background(), 4))
	assert.True(t, ok)
	assert.Equal(t, 4, rounds)
}
