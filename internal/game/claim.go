package game

import (
	"slices"
	"time"

	"github.com/scythe504/bingo-backend/internal"
	"github.com/scythe504/bingo-backend/internal/bingo"
)

// =============================================================================
// CLAIM HANDLING
// =============================================================================

// HandleClaim adjudicates a claim_bingo request. The card grid is
// regenerated from the id and checked cell-by-cell against the room's
// authoritative draw history; nothing the client marked is trusted.
func HandleClaim(player *internal.Player, claim internal.ClaimData) {
	room := player.Room
	if room == nil {
		return
	}

	card, err := bingo.GenerateCard(claim.CardID)
	if err != nil {
		rejectClaim(player, room.Id, claim.CardID, "invalid card id")
		return
	}
	if !bingo.KnownPattern(claim.Pattern) {
		rejectClaim(player, room.Id, claim.CardID, "unknown pattern")
		return
	}

	room.Mu.Lock()
	switch room.Status {
	case internal.StatusEnded:
		room.Mu.Unlock()
		rejectClaim(player, room.Id, claim.CardID, "room closed")
		return
	case internal.StatusActive:
		// adjudicate below
	default:
		room.Mu.Unlock()
		rejectClaim(player, room.Id, claim.CardID, "game not active")
		return
	}

	won, err := bingo.Validate(card, claim.Pattern, room.DrawnNumbers)
	if err != nil || !won {
		room.Mu.Unlock()
		metricClaims.WithLabelValues("rejected").Inc()
		log.Infof("[HandleClaim] room=%s player=%s card=%d pattern=%s rejected",
			room.Id, player.Id, claim.CardID, claim.Pattern)
		rejectClaim(player, room.Id, claim.CardID, "pattern not satisfied by drawn numbers")
		return
	}

	// Winning claim: end the game. All payout effects downstream gate on
	// this transition.
	room.Status = internal.StatusEnded
	room.Winner = &internal.WinResult{
		PlayerID: player.Id,
		Username: player.Username,
		CardID:   claim.CardID,
		Pattern:  claim.Pattern,
		WonAt:    time.Now().UnixMilli(),
	}
	room.LastActivity = time.Now()

	wonMsg := internal.Message[internal.WinResult]{
		Type: "game_won",
		Data: *room.Winner,
	}
	room.Mu.Unlock()

	metricClaims.WithLabelValues("won").Inc()
	log.Infof("[HandleClaim] room=%s player=%s WON card=%d pattern=%s",
		room.Id, player.Id, claim.CardID, claim.Pattern)

	SafeBroadcastToRoom(room, wonMsg)
	cancelPending(room)
}

func rejectClaim(player *internal.Player, roomID string, cardID int, reason string) {
	msg := internal.Message[internal.InvalidClaimData]{
		Type: "invalid_claim",
		Data: internal.InvalidClaimData{RoomID: roomID, CardID: cardID, Reason: reason},
	}
	if err := player.SafeWriteJSON(msg); err != nil {
		log.Warnf("[rejectClaim] room=%s player=%s write failed: %v", roomID, player.Id, err)
	}
}

// HandleSelectCard records a card pick. Bookkeeping only: selection is
// broadcast so lobbies can show who holds what, but adjudication never
// consults it.
func HandleSelectCard(player *internal.Player, cardID int, selected bool) {
	room := player.Room
	if room == nil {
		return
	}
	if cardID < bingo.MinCardID || cardID > bingo.MaxCardID {
		sendError(player, "invalid_card_id", "card id out of range")
		return
	}

	room.Mu.Lock()
	cards := room.SelectedCards[player.Id]
	if selected {
		if !slices.Contains(cards, cardID) {
			room.SelectedCards[player.Id] = append(cards, cardID)
		}
	} else {
		room.SelectedCards[player.Id] = slices.DeleteFunc(cards, func(id int) bool { return id == cardID })
	}
	room.LastActivity = time.Now()
	room.Mu.Unlock()

	msgType := "card_selected"
	if !selected {
		msgType = "card_deselected"
	}
	SafeBroadcastToRoom(room, internal.Message[internal.CardSelectionData]{
		Type: msgType,
		Data: internal.CardSelectionData{
			PlayerID: player.Id,
			Username: player.Username,
			CardID:   cardID,
		},
	})
}
