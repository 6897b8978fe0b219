package draft

import (
	"math/rand"

	"github.com/google/uuid"
)

// GenerateDraftOrder returns a uniform random permutation of teamIDs. The
// input slice is left untouched; the permutation happens on a copy.
func GenerateDraftOrder(teamIDs []uuid.UUID, rng *rand.Rand) []uuid.UUID {
	order := make([]uuid.UUID, len(teamIDs))
	copy(order, teamIDs)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

// TeamOnClock resolves which team holds the next pick slot. round is
// 1-indexed, picksMade counts every committed pick in the draft, so
// picksMade mod len(order) is the 0-indexed position within the current
// round. Odd rounds walk the order forward, even rounds walk it backward.
// Returns false when the order is empty, i.e. the draft has not started.
//
// Callers must pass pre-pick state; after a commit the counters already
// describe the following slot.
func TeamOnClock(order []uuid.UUID, round, picksMade int) (uuid.UUID, bool) {
	n := len(order)
	if n == 0 {
		return uuid.Nil, false
	}
	pos := picksMade % n
	if round%2 == 0 {
		pos = n - 1 - pos
	}
	return order[pos], true
}
