package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/scythe504/bingo-backend/internal"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Room ids come straight off the URL path; constrain them so they stay
// safe to embed in store queries and log lines.
var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// HandleWebSocket upgrades the connection and attaches the player to the
// room named in the URL. Joining an unknown room id creates it.
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("[HandleWebSocket] upgrade failed: %v", err)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		username = "Anonymous"
	}

	roomID := roomIDFromPath(r)
	if !roomIDPattern.MatchString(roomID) {
		log.Warnf("[HandleWebSocket] rejecting malformed room id %q", roomID)
		_ = conn.WriteJSON(internal.Message[internal.ErrorData]{
			Type: "error",
			Data: internal.ErrorData{Code: "join_rejected", Message: "invalid room id"},
		})
		conn.Close()
		return
	}

	player := &internal.Player{
		Id:       uuid.NewString(),
		Conn:     conn,
		Username: username,
	}

	if err := AddPlayer(roomID, player); err != nil {
		reason := "join rejected"
		switch {
		case errors.Is(err, ErrRoomClosed):
			reason = "room closed"
		case errors.Is(err, ErrRoomFull):
			reason = "room full"
		}
		_ = conn.WriteJSON(internal.Message[internal.ErrorData]{
			Type: "error",
			Data: internal.ErrorData{Code: "join_rejected", Message: reason},
		})
		conn.Close()
		return
	}

	go handleMessages(player)
}

// handleMessages is the per-connection read loop and inbound router.
func handleMessages(player *internal.Player) {
	defer func() {
		if player.Conn != nil {
			player.Conn.Close()
		}
		RemovePlayer(player)
	}()

	log.Infof("[handleMessages] player=%s (%s) room=%s reader started",
		player.Id, player.Username, player.Room.Id)

	for {
		_, raw, err := player.Conn.ReadMessage()
		if err != nil {
			log.Debugf("[handleMessages] player=%s read error: %v", player.Id, err)
			break
		}

		var baseMsg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &baseMsg); err != nil {
			sendError(player, "bad_message", "message is not valid JSON")
			continue
		}

		switch baseMsg.Type {
		case "start_countdown":
			if err := StartCountdown(player.Room); err != nil {
				sendError(player, "start_rejected", err.Error())
			}

		case "claim_bingo":
			var claim internal.ClaimData
			if err := json.Unmarshal(baseMsg.Data, &claim); err != nil {
				sendError(player, "bad_message", "malformed claim payload")
				continue
			}
			HandleClaim(player, claim)

		case "select_card", "deselect_card":
			var cardID int
			if err := json.Unmarshal(baseMsg.Data, &cardID); err != nil {
				sendError(player, "bad_message", "malformed card id")
				continue
			}
			HandleSelectCard(player, cardID, baseMsg.Type == "select_card")

		case "game_state":
			// Reconnecting clients re-sync with a fresh snapshot.
			SendGameState(player)

		default:
			sendError(player, "unknown_type", "unsupported message type: "+baseMsg.Type)
		}
	}
}

func roomIDFromPath(r *http.Request) string {
	// Path shape: /ws/{roomId}
	const prefix = "/ws/"
	if len(r.URL.Path) <= len(prefix) {
		return ""
	}
	return r.URL.Path[len(prefix):]
}
