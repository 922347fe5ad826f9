package bingo

import (
	"errors"
	"fmt"
	"math/rand"
)

const (
	MinCardID = 1
	MaxCardID = 300

	// Wildcard marks the free center cell. Zero never appears in any
	// column band, so it cannot collide with a real number.
	Wildcard = 0

	gridSize   = 5
	bandSize   = 15
	centerRow  = 2
	centerCol  = 2
	maxRejects = 1000
)

var ErrInvalidCardID = errors.New("card id out of range")

// Card is a 5x5 grid indexed [row][col]. Column k draws from the band
// [15k+1, 15k+15] (the B/I/N/G/O convention); grid[2][2] is the wildcard.
type Card struct {
	ID   int                     `json:"card_id"`
	Grid [gridSize][gridSize]int `json:"grid"`
}

// GenerateCard deterministically derives the grid for a card id. The same
// id always yields byte-identical output on any instance, so clients can
// reconstruct a card from the id alone without a round-trip.
func GenerateCard(cardID int) (*Card, error) {
	if cardID < MinCardID || cardID > MaxCardID {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidCardID, cardID, MinCardID, MaxCardID)
	}

	// Per-card stream: math/rand's generator is fully specified by its
	// seed, with no floating-point involvement, so output is stable
	// across platforms and Go releases of the same source. The odd
	// multiplier spreads adjacent ids apart in seed space.
	rng := rand.New(rand.NewSource(int64(cardID) * 0x9E3779B1))

	card := &Card{ID: cardID}
	for col := 0; col < gridSize; col++ {
		low := col*bandSize + 1
		used := make(map[int]bool, gridSize)
		rejects := 0
		for row := 0; row < gridSize; row++ {
			if row == centerRow && col == centerCol {
				card.Grid[row][col] = Wildcard
				continue
			}
			for {
				n := low + rng.Intn(bandSize)
				if !used[n] {
					used[n] = true
					card.Grid[row][col] = n
					break
				}
				rejects++
				if rejects > maxRejects {
					// Drawing <=5 from a 15-slot band cannot plausibly
					// reject this often; treat as fatal misconfiguration.
					panic(fmt.Sprintf("card generation stuck for id %d col %d", cardID, col))
				}
			}
		}
	}
	return card, nil
}

// CellMarked reports whether a cell counts as marked given the numbers
// drawn so far. The wildcard is always marked.
func (c *Card) CellMarked(row, col int, drawn map[int]bool) bool {
	v := c.Grid[row][col]
	if v == Wildcard {
		return true
	}
	return drawn[v]
}
