package internal

import (
	"sync"
	"time"
)

type GameStatus string

const (
	StatusWaiting   GameStatus = "waiting"
	StatusCountdown GameStatus = "countdown"
	StatusActive    GameStatus = "active"
	StatusEnded     GameStatus = "ended"
)

type Room struct {
	Id      string
	Players map[string]*Player

	// Game state
	Status             GameStatus `json:"status"`
	DrawnNumbers       []int      `json:"drawn_numbers"`
	DrawSequence       []int      `json:"-"` // never leaves the server
	CountdownRemaining int        `json:"countdown_remaining"`

	// Card bookkeeping: player id -> selected card ids. Broadcast-only,
	// has no effect on win adjudication.
	SelectedCards map[string][]int `json:"selected_cards"`

	// Result of a won game, nil until then
	Winner *WinResult `json:"winner,omitempty"`

	// Operational state
	LastActivity time.Time `json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// Evicted marks an object CleanupRoom has torn down. A join that
	// raced teardown sees it and resolves the room id afresh instead of
	// attaching to a dead object.
	Evicted bool `json:"-"`

	// Concurrency control
	Mu sync.RWMutex `json:"-"`
}

type WinResult struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	CardID   int    `json:"card_id"`
	Pattern  string `json:"pattern"`
	WonAt    int64  `json:"won_at_ms"`
}
