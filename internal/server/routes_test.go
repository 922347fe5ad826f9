package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scythe504/bingo-backend/internal"
	"github.com/scythe504/bingo-backend/internal/config"
	"github.com/scythe504/bingo-backend/internal/game"
	"github.com/scythe504/bingo-backend/internal/logger"
	"github.com/scythe504/bingo-backend/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := schedule.NewMemoryStore()
	game.Init(config.GameConfig{
		CountdownSeconds:    3,
		CountdownTick:       15 * time.Millisecond,
		FirstCallDelay:      30 * time.Millisecond,
		CallInterval:        30 * time.Millisecond,
		IdleTimeout:         time.Hour,
		MaxPlayersPerRoom:   50,
		MaxScheduleFailures: 3,
	}, store)
	game.RoomsMu.Lock()
	game.Rooms = make(map[string]*internal.Room)
	game.RoomsMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	worker := schedule.NewWorker(store, game.HandleEvent, 5*time.Millisecond, 64, logger.L())
	go worker.Run(ctx)
	t.Cleanup(cancel)

	s := &Server{cfg: &config.Config{HTTPPort: "0"}}
	ts := httptest.NewServer(s.RegisterRoutes())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, roomID, username string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + roomID + "?username=" + username
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) internal.Message[json.RawMessage] {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg internal.Message[json.RawMessage]
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil collects messages of the given types until stop is seen.
func readUntil(t *testing.T, conn *websocket.Conn, stop string) []internal.Message[json.RawMessage] {
	t.Helper()
	var msgs []internal.Message[json.RawMessage]
	for {
		msg := readMessage(t, conn)
		msgs = append(msgs, msg)
		if msg.Type == stop {
			return msgs
		}
	}
}

func TestWebSocketFullGameStartScenario(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "scenario-a", "alice")

	// Join snapshot arrives first, room in waiting.
	snapshot := readMessage(t, conn)
	require.Equal(t, "game_state", snapshot.Type)
	var state internal.GameStateData
	require.NoError(t, json.Unmarshal(snapshot.Data, &state))
	assert.Equal(t, internal.StatusWaiting, state.Status)
	assert.Equal(t, 1, state.PlayerCount)

	require.NoError(t, conn.WriteJSON(internal.Message[any]{Type: "start_countdown"}))

	msgs := readUntil(t, conn, "number_called")

	// Ticks must count strictly down to zero, then game_started, then
	// the first call.
	var ticks []int
	sawStarted := false
	for _, msg := range msgs {
		switch msg.Type {
		case "countdown_tick":
			var tick internal.CountdownTickData
			require.NoError(t, json.Unmarshal(msg.Data, &tick))
			ticks = append(ticks, tick.Remaining)
			assert.False(t, sawStarted, "no ticks after game_started")
		case "game_started":
			sawStarted = true
		}
	}
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.True(t, sawStarted)

	var called internal.NumberCalledData
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].Data, &called))
	assert.Equal(t, 0, called.CallIndex)
	assert.Equal(t, []int{called.Number}, called.DrawnNumbers)
	assert.GreaterOrEqual(t, called.Number, 1)
	assert.LessOrEqual(t, called.Number, 75)
}

func TestWebSocketInvalidClaimIsRejected(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "claims", "bob")
	readMessage(t, conn) // join snapshot

	claim, _ := json.Marshal(internal.ClaimData{CardID: 44, Pattern: "four_corners"})
	require.NoError(t, conn.WriteJSON(internal.Message[json.RawMessage]{Type: "claim_bingo", Data: claim}))

	msg := readMessage(t, conn)
	require.Equal(t, "invalid_claim", msg.Type)
	var rejection internal.InvalidClaimData
	require.NoError(t, json.Unmarshal(msg.Data, &rejection))
	assert.Equal(t, 44, rejection.CardID)
}

func TestWebSocketRejectsMalformedRoomID(t *testing.T) {
	ts := newTestServer(t)

	// A room id is embedded in store queries; ids outside the allowed
	// charset are turned away before a room is ever created.
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/bad*id?username=mallory"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	require.Equal(t, "error", msg.Type)
	var data internal.ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "join_rejected", data.Code)
	assert.Nil(t, game.LookupRoom("bad*id"))
}

func TestRoomsAvailableEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/rooms-available")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no rooms yet")

	conn := dial(t, ts, "lobby-1", "carol")
	readMessage(t, conn)

	resp, err = http.Get(ts.URL + "/rooms-available")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body internal.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "lobby-1", body.Data)
}

func TestGetCardEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/cards/44")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var card struct {
		ID   int       `json:"card_id"`
		Grid [5][5]int `json:"grid"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&card))
	assert.Equal(t, 44, card.ID)
	assert.Equal(t, 0, card.Grid[2][2], "center is the wildcard")

	resp, err = http.Get(ts.URL + "/cards/301")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
