package bingo

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// UniverseSize is the classic 75-ball universe (five bands of fifteen).
const UniverseSize = gridSize * bandSize

// NewDrawSequence returns an unbiased permutation of [1..universeSize].
// The permutation is committed once per game; the next number to call is
// always sequence[len(drawnNumbers)], which makes replayed call events
// idempotent by index.
func NewDrawSequence(universeSize int) []int {
	seq := make([]int, universeSize)
	for i := range seq {
		seq[i] = i + 1
	}

	rng := rand.New(rand.NewSource(cryptoSeed()))
	// Fisher-Yates
	for i := len(seq) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		seq[i], seq[j] = seq[j], seq[i]
	}
	return seq
}

func cryptoSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand failure means the platform is broken; there is no
		// acceptable fallback for a real-money draw.
		panic("bingo: crypto/rand unavailable: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
