package schedule

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps transport failures talking to the backing
// store. Callers retry with backoff; a failed drain only delays ticks,
// it never loses them.
var ErrStoreUnavailable = errors.New("delayed event store unavailable")

// Store is the externally durable, time-ordered queue of pending events.
// Any number of stateless workers may poll the same store: an event
// returned by one DrainDue call is never returned by a concurrent call.
// Handlers must still be idempotent, since retries above the store can
// deliver an event's effect more than once.
type Store interface {
	// Schedule inserts the event keyed by now + delay.
	Schedule(ctx context.Context, ev Event, delay time.Duration) error

	// DrainDue atomically removes and returns up to limit events whose
	// due time is <= now, earliest first.
	DrainDue(ctx context.Context, limit int) ([]Event, error)

	// CancelRoom removes every pending event for one room. Teardown
	// tolerates a missed cancel (handlers re-check state), but timely
	// cancellation bounds store growth.
	CancelRoom(ctx context.Context, roomID string) error

	Close() error
}
