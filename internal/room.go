package internal

// Methods (Room struct). Callers hold r.Mu.

func (r *Room) GetPlayerCount() int {
	count := 0
	for _, player := range r.Players {
		if player.IsConnected {
			count++
		}
	}
	return count
}

// NextDrawIndex is the index into DrawSequence of the next number to call.
// DrawnNumbers is always a strict prefix of DrawSequence, so the prefix
// length is the index.
func (r *Room) NextDrawIndex() int {
	return len(r.DrawnNumbers)
}

func (r *Room) SequenceExhausted() bool {
	return len(r.DrawSequence) > 0 && len(r.DrawnNumbers) >= len(r.DrawSequence)
}

func (r *Room) Snapshot() GameStateData {
	players := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.ToPublicPlayer())
	}
	drawn := append([]int(nil), r.DrawnNumbers...)
	return GameStateData{
		RoomID:             r.Id,
		Status:             r.Status,
		PlayerCount:        r.GetPlayerCount(),
		Players:            players,
		DrawnNumbers:       drawn,
		CountdownRemaining: r.CountdownRemaining,
		Winner:             r.Winner,
	}
}
