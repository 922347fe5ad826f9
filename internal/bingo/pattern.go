package bingo

import "fmt"

// A cell is a [row, col] coordinate on the 5x5 grid.
type cell [2]int

// patterns maps a claimable pattern name to the cells it requires.
// Pattern names are part of the client protocol.
var patterns = map[string][]cell{
	"diag_main":    {{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}},
	"diag_anti":    {{0, 4}, {1, 3}, {2, 2}, {3, 1}, {4, 0}},
	"four_corners": {{0, 0}, {0, 4}, {4, 0}, {4, 4}},
}

func init() {
	for i := 0; i < gridSize; i++ {
		row := make([]cell, 0, gridSize)
		col := make([]cell, 0, gridSize)
		full := patterns["full_card"]
		for j := 0; j < gridSize; j++ {
			row = append(row, cell{i, j})
			col = append(col, cell{j, i})
			full = append(full, cell{i, j})
		}
		patterns[fmt.Sprintf("row_%d", i+1)] = row
		patterns[fmt.Sprintf("col_%d", i+1)] = col
		patterns["full_card"] = full
	}
}

// KnownPattern reports whether name is a claimable pattern.
func KnownPattern(name string) bool {
	_, ok := patterns[name]
	return ok
}

// PatternNames lists every claimable pattern, for client discovery.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	return names
}
