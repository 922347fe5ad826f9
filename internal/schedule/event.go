package schedule

import "encoding/json"

type EventKind string

const (
	KindCountdownTick EventKind = "countdown_tick"
	KindCallNumber    EventKind = "call_number"
	KindResetRoom     EventKind = "reset_room"
)

// Event is one unit of deferred work. It carries enough of the expected
// pre-state (Remaining, Index) for handlers to apply it as a conditional
// transition: a replayed or late event whose pre-state no longer holds is
// a silent no-op, which is what makes at-least-once delivery safe.
type Event struct {
	Kind   EventKind `json:"kind"`
	RoomID string    `json:"room_id"`

	// CountdownTick: the remaining-seconds value this tick produces.
	Remaining int `json:"remaining,omitempty"`

	// CallNumber: index into the room's committed draw sequence.
	Index int `json:"index,omitempty"`

	// Nonce keeps otherwise-identical events distinct in stores that
	// key by member value (the redis ZSET would collapse them).
	Nonce string `json:"nonce,omitempty"`
}

func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	return string(b), err
}

func DecodeEvent(s string) (Event, error) {
	var e Event
	err := json.Unmarshal([]byte(s), &e)
	return e, err
}
