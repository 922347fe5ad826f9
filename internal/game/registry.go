package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scythe504/bingo-backend/internal"
	"github.com/scythe504/bingo-backend/internal/config"
	"github.com/scythe504/bingo-backend/internal/logger"
	"github.com/scythe504/bingo-backend/internal/schedule"
	"go.uber.org/zap"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

var (
	Rooms   = make(map[string]*internal.Room)
	RoomsMu sync.RWMutex

	// Wired by Init before any traffic is served.
	Store schedule.Store
	Cfg   config.GameConfig

	log *zap.SugaredLogger
)

var (
	ErrRoomClosed     = errors.New("room is closed")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyStarted = errors.New("game already started")
)

// Init wires the event store and game pacing into the package. Tests
// call it with a memory store and short intervals.
func Init(cfg config.GameConfig, store schedule.Store) {
	Cfg = cfg
	Store = store
	log = logger.L()
}

// GetJoinableRoom returns the id of a room still accepting players.
func GetJoinableRoom() string {
	RoomsMu.RLock()
	defer RoomsMu.RUnlock()

	for _, room := range Rooms {
		room.Mu.RLock()
		joinable := room.Status == internal.StatusWaiting && len(room.Players) < Cfg.MaxPlayersPerRoom
		roomID := room.Id
		room.Mu.RUnlock()
		if joinable {
			return roomID
		}
	}
	return ""
}

// getOrCreateRoom retrieves an existing room or creates a fresh Waiting
// one. A room id whose previous game ended and was evicted starts over
// from scratch here.
func getOrCreateRoom(roomID string) *internal.Room {
	RoomsMu.Lock()
	defer RoomsMu.Unlock()

	if room, exists := Rooms[roomID]; exists {
		return room
	}

	now := time.Now()
	room := &internal.Room{
		Id:            roomID,
		Players:       make(map[string]*internal.Player),
		Status:        internal.StatusWaiting,
		DrawnNumbers:  make([]int, 0),
		SelectedCards: make(map[string][]int),
		LastActivity:  now,
		CreatedAt:     now,
	}
	Rooms[roomID] = room
	metricActiveRooms.Inc()

	// Arm the idle-eviction sweep. Failure here is tolerable: the room
	// just won't be reaped until a later event re-arms it.
	if err := Store.Schedule(context.Background(), schedule.Event{
		Kind:   schedule.KindResetRoom,
		RoomID: roomID,
	}, Cfg.IdleTimeout); err != nil {
		log.Warnf("[getOrCreateRoom] room=%s failed to arm idle sweep: %v", roomID, err)
	}

	log.Infof("[getOrCreateRoom] room=%s created", roomID)
	return room
}

// LookupRoom returns the room for an id, or nil.
func LookupRoom(roomID string) *internal.Room {
	RoomsMu.RLock()
	defer RoomsMu.RUnlock()
	return Rooms[roomID]
}

// AddPlayer joins a player to a room and sends it the current snapshot.
func AddPlayer(roomID string, player *internal.Player) error {
	var room *internal.Room
	for {
		room = getOrCreateRoom(roomID)
		room.Mu.Lock()
		if !room.Evicted {
			break
		}
		// Teardown won the race for this object; its registry entry is
		// on the way out, so resolve the id again.
		room.Mu.Unlock()
	}

	if room.Status == internal.StatusEnded {
		room.Mu.Unlock()
		log.Infof("[AddPlayer] room=%s rejecting %s: room closed", roomID, player.Id)
		return ErrRoomClosed
	}
	if len(room.Players) >= Cfg.MaxPlayersPerRoom {
		room.Mu.Unlock()
		return ErrRoomFull
	}

	player.Room = room
	player.IsConnected = true
	player.JoinedAt = time.Now()
	room.Players[player.Id] = player
	room.LastActivity = time.Now()

	joinMsg := internal.Message[internal.PlayerJoinedData]{
		Type: "player_joined",
		Data: internal.PlayerJoinedData{
			Player:      player.ToPublicPlayer(),
			PlayerCount: room.GetPlayerCount(),
		},
	}
	snapshot := internal.Message[internal.GameStateData]{
		Type: "game_state",
		Data: room.Snapshot(),
	}
	room.Mu.Unlock()

	metricConnectedPlayers.Inc()
	log.Infof("[AddPlayer] room=%s player=%s (%s) joined", roomID, player.Id, player.Username)

	SafeBroadcastToRoomExcept(room, joinMsg, player)

	// Snapshot delivery is best-effort; a client that missed it asks for
	// a fresh game_state.
	if err := player.SafeWriteJSON(snapshot); err != nil {
		log.Warnf("[AddPlayer] room=%s failed to send snapshot to %s: %v", roomID, player.Id, err)
	}
	return nil
}

// RemovePlayer handles disconnection. Emptying the room tears it down
// immediately, whatever its status.
func RemovePlayer(player *internal.Player) {
	room := player.Room
	if room == nil {
		return
	}

	room.Mu.Lock()
	if _, present := room.Players[player.Id]; !present {
		room.Mu.Unlock()
		return
	}
	delete(room.Players, player.Id)
	delete(room.SelectedCards, player.Id)
	player.IsConnected = false
	remaining := room.GetPlayerCount()

	leftMsg := internal.Message[internal.PlayerLeftData]{
		Type: "player_left",
		Data: internal.PlayerLeftData{
			PlayerID:    player.Id,
			Username:    player.Username,
			PlayerCount: remaining,
		},
	}
	room.Mu.Unlock()

	metricConnectedPlayers.Dec()
	log.Infof("[RemovePlayer] room=%s player=%s left, %d remaining", room.Id, player.Id, remaining)

	if remaining == 0 {
		CleanupRoom(room)
		return
	}
	SafeBroadcastToRoom(room, leftMsg)
}

// CleanupRoom cancels the room's pending events and evicts it from the
// registry. A join that slipped in after the room looked empty keeps it
// alive. Handlers re-check room state, so a cancel that races a drain
// leaves only harmless no-op events behind.
func CleanupRoom(room *internal.Room) {
	room.Mu.Lock()
	if room.Status != internal.StatusEnded && len(room.Players) > 0 {
		room.Mu.Unlock()
		log.Infof("[CleanupRoom] room=%s repopulated, keeping it", room.Id)
		return
	}
	room.Evicted = true
	departing := len(room.Players)
	for _, p := range room.Players {
		if p.Conn != nil {
			_ = p.Conn.Close()
		}
	}
	room.Players = make(map[string]*internal.Player)
	room.Mu.Unlock()

	// Force-evicted players never reach RemovePlayer's accounting path
	// (their entries are already gone), so settle the gauge here.
	if departing > 0 {
		metricConnectedPlayers.Sub(float64(departing))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Store.CancelRoom(ctx, room.Id); err != nil {
		log.Warnf("[CleanupRoom] room=%s cancel pending events failed: %v", room.Id, err)
	}

	RoomsMu.Lock()
	if _, exists := Rooms[room.Id]; exists {
		delete(Rooms, room.Id)
		metricActiveRooms.Dec()
	}
	RoomsMu.Unlock()

	log.Infof("[CleanupRoom] room=%s evicted", room.Id)
}
