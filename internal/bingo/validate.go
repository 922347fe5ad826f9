package bingo

import "errors"

var ErrUnknownPattern = errors.New("unknown claim pattern")

// Validate is the adjudication boundary: it decides whether a card wins
// the claimed pattern given the authoritative draw history. It is a pure
// function and never consults client-reported marks. Every required
// cell must be the wildcard or a number the server actually called.
func Validate(card *Card, pattern string, drawnNumbers []int) (bool, error) {
	cells, ok := patterns[pattern]
	if !ok {
		return false, ErrUnknownPattern
	}

	drawn := make(map[int]bool, len(drawnNumbers))
	for _, n := range drawnNumbers {
		drawn[n] = true
	}

	for _, c := range cells {
		if !card.CellMarked(c[0], c[1], drawn) {
			return false, nil
		}
	}
	return true, nil
}
