package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCardDeterministic(t *testing.T) {
	for _, id := range []int{1, 44, 150, 300} {
		first, err := GenerateCard(id)
		require.NoError(t, err)
		second, err := GenerateCard(id)
		require.NoError(t, err)
		assert.Equal(t, first.Grid, second.Grid, "card %d must be reproducible", id)
	}
}

func TestGenerateCardColumnBands(t *testing.T) {
	for id := MinCardID; id <= MaxCardID; id++ {
		card, err := GenerateCard(id)
		require.NoError(t, err)

		for col := 0; col < gridSize; col++ {
			low, high := col*bandSize+1, (col+1)*bandSize
			seen := make(map[int]bool)
			for row := 0; row < gridSize; row++ {
				v := card.Grid[row][col]
				if row == centerRow && col == centerCol {
					assert.Equal(t, Wildcard, v, "card %d center must be wildcard", id)
					continue
				}
				assert.GreaterOrEqual(t, v, low, "card %d col %d", id, col)
				assert.LessOrEqual(t, v, high, "card %d col %d", id, col)
				assert.False(t, seen[v], "card %d col %d duplicate %d", id, col, v)
				seen[v] = true
			}
		}
	}
}

func TestGenerateCardInvalidID(t *testing.T) {
	for _, id := range []int{0, -1, 301, 100000} {
		_, err := GenerateCard(id)
		assert.ErrorIs(t, err, ErrInvalidCardID, "id %d", id)
	}
}

func TestCellMarked(t *testing.T) {
	card, err := GenerateCard(44)
	require.NoError(t, err)

	assert.True(t, card.CellMarked(centerRow, centerCol, nil), "wildcard is always marked")

	v := card.Grid[0][0]
	assert.False(t, card.CellMarked(0, 0, map[int]bool{}))
	assert.True(t, card.CellMarked(0, 0, map[int]bool{v: true}))
}
