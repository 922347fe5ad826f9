package internal

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrNoConnection = errors.New("player has no active connection")

type Player struct {
	Id       string          `json:"id"`
	Conn     *websocket.Conn `json:"-"`
	Room     *Room           `json:"-"` // Avoid circular reference in JSON
	Username string          `json:"username"`

	IsConnected bool      `json:"is_connected"`
	JoinedAt    time.Time `json:"joined_at"`

	Mu sync.Mutex `json:"-"`
}

// SafeWriteJSON serializes writes to the shared websocket connection.
// gorilla/websocket allows at most one concurrent writer.
func (p *Player) SafeWriteJSON(v any) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	if p.Conn == nil {
		return ErrNoConnection
	}
	return p.Conn.WriteJSON(v)
}

// ToPublicPlayer strips connection state for broadcast payloads
func (p *Player) ToPublicPlayer() *Player {
	return &Player{
		Id:          p.Id,
		Username:    p.Username,
		IsConnected: p.IsConnected,
		JoinedAt:    p.JoinedAt,
	}
}
