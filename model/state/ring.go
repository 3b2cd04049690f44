package state

// Left returns the index of the left neighbour of agent i in a ring of n agents
func Left(i, n int) int {
	return (i + n - 1) % n
}

// Right returns the index of the right neighbour of agent i in a ring of n agents
func Right(i, n int) int {
	return (i + 1) % n
}

// Adjacent returns true if agents a and b share a resource in a ring of n agents
func Adjacent(a, b, n int) bool {
	if a == b {
		return false
	}
	return Left(a, n) == b || Right(a, n) == b
}

// Exclusive reports whether states satisfy mutual exclusion, that is no two
// neighbours are active at the same time. It returns the first offending
// pair when they do not.
func Exclusive(states []State) (bool, int, int) {
	n := len(states)
	if n < 2 {
		return true, -1, -1
	}
	for i, s := range states {
		if !s.IsActive() {
			continue
		}
		if r := Right(i, n); states[r].IsActive() {
			return false, i, r
		}
	}
	return true, -1, -1
}

// CountActive returns the number of active agents
func CountActive(states []State) int {
	ret := 0
	for _, s := range states {
		if s.IsActive() {
			ret++
		}
	}
	return ret
}
