package internal

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

type GameStateData struct {
	RoomID             string     `json:"room_id"`
	Status             GameStatus `json:"status"`
	PlayerCount        int        `json:"player_count"`
	Players            []*Player  `json:"players"`
	DrawnNumbers       []int      `json:"drawn_numbers"`
	CountdownRemaining int        `json:"countdown_remaining"`
	Winner             *WinResult `json:"winner,omitempty"`
}

type PlayerJoinedData struct {
	Player      *Player `json:"player"`
	PlayerCount int     `json:"player_count"`
}

type PlayerLeftData struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	PlayerCount int    `json:"player_count"`
}

type CountdownTickData struct {
	RoomID    string `json:"room_id"`
	Remaining int    `json:"remaining"`
}

type NumberCalledData struct {
	RoomID       string `json:"room_id"`
	Number       int    `json:"number"`
	DrawnNumbers []int  `json:"drawn_numbers"`
	CallIndex    int    `json:"call_index"`
}

type CardSelectionData struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	CardID   int    `json:"card_id"`
}

// ClaimData is the inbound claim_bingo payload. The marked cells a client
// believes it has are deliberately absent: adjudication only trusts the
// card id, the pattern name and the server-side draw history.
type ClaimData struct {
	CardID  int    `json:"card_id"`
	Pattern string `json:"pattern"`
}

type InvalidClaimData struct {
	RoomID string `json:"room_id"`
	CardID int    `json:"card_id"`
	Reason string `json:"reason"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
