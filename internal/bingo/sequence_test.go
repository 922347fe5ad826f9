package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDrawSequenceIsPermutation(t *testing.T) {
	seq := NewDrawSequence(UniverseSize)
	require.Len(t, seq, UniverseSize)

	seen := make(map[int]bool, UniverseSize)
	for _, n := range seq {
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, UniverseSize)
		assert.False(t, seen[n], "duplicate %d", n)
		seen[n] = true
	}
}

func TestNewDrawSequenceVaries(t *testing.T) {
	// Two games must not share a draw order. A collision of two random
	// 75-element permutations is beyond astronomically unlikely.
	a := NewDrawSequence(UniverseSize)
	b := NewDrawSequence(UniverseSize)
	assert.NotEqual(t, a, b)
}
