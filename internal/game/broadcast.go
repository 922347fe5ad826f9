package game

import (
	"github.com/gorilla/websocket"
	"github.com/scythe504/bingo-backend/internal"
)

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

// SafeBroadcastToRoom fans a message out to every connected observer.
// Players are snapshotted under the room lock, then written to without
// it, so a slow connection can never stall state transitions. Delivery
// is at-most-once per connection; clients re-sync with a game_state
// request after reconnecting.
func SafeBroadcastToRoom[T any](room *internal.Room, msg internal.Message[T]) {
	room.Mu.RLock()
	players := make([]*internal.Player, 0, len(room.Players))
	for _, player := range room.Players {
		if player.IsConnected {
			players = append(players, player)
		}
	}
	room.Mu.RUnlock()

	for _, player := range players {
		if err := player.SafeWriteJSON(msg); err != nil {
			log.Debugf("[Broadcast] room=%s send to %s failed: %v", room.Id, player.Id, err)
			if websocket.IsUnexpectedCloseError(err) {
				go RemovePlayer(player)
			}
		}
	}
}

// SafeBroadcastToRoomExcept fans out to everyone but one player.
func SafeBroadcastToRoomExcept[T any](room *internal.Room, msg internal.Message[T], exclude *internal.Player) {
	room.Mu.RLock()
	players := make([]*internal.Player, 0, len(room.Players))
	for _, player := range room.Players {
		if player.IsConnected && (exclude == nil || player.Id != exclude.Id) {
			players = append(players, player)
		}
	}
	room.Mu.RUnlock()

	for _, player := range players {
		if err := player.SafeWriteJSON(msg); err != nil {
			log.Debugf("[BroadcastExcept] room=%s send to %s failed: %v", room.Id, player.Id, err)
		}
	}
}

// SendGameState pushes a full snapshot to one player (reconnect path).
func SendGameState(player *internal.Player) {
	room := player.Room
	if room == nil {
		return
	}
	room.Mu.RLock()
	msg := internal.Message[internal.GameStateData]{
		Type: "game_state",
		Data: room.Snapshot(),
	}
	room.Mu.RUnlock()

	if err := player.SafeWriteJSON(msg); err != nil {
		log.Warnf("[SendGameState] room=%s player=%s write failed: %v", room.Id, player.Id, err)
	}
}

func sendError(player *internal.Player, code, message string) {
	msg := internal.Message[internal.ErrorData]{
		Type: "error",
		Data: internal.ErrorData{Code: code, Message: message},
	}
	if err := player.SafeWriteJSON(msg); err != nil {
		log.Debugf("[sendError] player=%s write failed: %v", player.Id, err)
	}
}
