package rbl

import (
	"fmt"
	"math/rand"
)

// NewPuzzleOrder returns the catalog indices a room will play, in play
// order. It takes a uniform Fisher-Yates permutation of [0, totalPuzzles)
// and keeps the first totalRounds entries, so the result is a shuffled
// sample without replacement.
func NewPuzzleOrder(totalPuzzles, totalRounds int) ([]int, error) {
	if totalRounds < 1 {
		return nil, fmt.Errorf("totalRounds must be positive, got %d", totalRounds)
	}
	if totalPuzzles < totalRounds {
		return nil, fmt.Errorf("not enough puzzles: %d rounds requested but catalog has %d", totalRounds, totalPuzzles)
	}

	order := make([]int, totalPuzzles)
	for i := range order {
		order[i] = i
	}
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	return order[:totalRounds], nil
}
