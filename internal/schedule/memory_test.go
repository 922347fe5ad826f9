package schedule

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDrainsInDueOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "r", Index: 2}, 2*time.Millisecond))
	require.NoError(t, store.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "r", Index: 0}, 0))
	require.NoError(t, store.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "r", Index: 1}, time.Millisecond))

	time.Sleep(5 * time.Millisecond)
	events, err := store.DrainDue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, i, ev.Index, "earliest due first")
	}

	events, err = store.DrainDue(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events, "drained events are removed")
}

func TestMemoryStoreHonorsDueTimeAndLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Schedule(ctx, Event{Kind: KindResetRoom, RoomID: "r"}, time.Hour))
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "r", Index: i}, 0))
	}

	events, err := store.DrainDue(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3, "limit respected")

	events, err = store.DrainDue(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2, "remainder of due events")
	assert.Equal(t, 1, store.Pending(), "future event stays queued")
}

func TestMemoryStoreConcurrentDrainNoDuplicates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const total = 200
	for i := 0; i < total; i++ {
		require.NoError(t, store.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "r", Index: i}, 0))
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				events, err := store.DrainDue(ctx, 7)
				assert.NoError(t, err)
				if len(events) == 0 {
					return
				}
				mu.Lock()
				for _, ev := range events {
					seen[ev.Index]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, total)
	for idx, count := range seen {
		assert.Equal(t, 1, count, "event %d delivered more than once", idx)
	}
}

func TestMemoryStoreInsertionOrderIsPerStore(t *testing.T) {
	a, b := NewMemoryStore(), NewMemoryStore()
	fixed := time.Now()
	a.now = func() time.Time { return fixed }
	b.now = func() time.Time { return fixed }
	ctx := context.Background()

	// Identical due times across two stores: each store must fall back
	// to its own insertion order, unaffected by the other's traffic.
	for i := 0; i < 5; i++ {
		require.NoError(t, a.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "a", Index: i}, 0))
		require.NoError(t, b.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "b", Index: i}, 0))
	}

	for _, store := range []*MemoryStore{a, b} {
		events, err := store.DrainDue(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 5)
		for i, ev := range events {
			assert.Equal(t, i, ev.Index)
		}
	}
}

func TestMemoryStoreCancelRoom(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "keep", Index: 0}, 0))
	require.NoError(t, store.Schedule(ctx, Event{Kind: KindCallNumber, RoomID: "gone", Index: 0}, 0))
	require.NoError(t, store.Schedule(ctx, Event{Kind: KindCountdownTick, RoomID: "gone", Remaining: 5}, 0))

	require.NoError(t, store.CancelRoom(ctx, "gone"))

	events, err := store.DrainDue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "keep", events[0].RoomID)
}

func TestEventCodecRoundTrip(t *testing.T) {
	original := Event{Kind: KindCountdownTick, RoomID: "room-9", Remaining: 12, Nonce: "n1"}
	encoded, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodeEvent(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	_, err = DecodeEvent("{not json")
	assert.Error(t, err)
}

func TestEventEncodeContainsRoomID(t *testing.T) {
	// The redis cancel path scans for the serialized room_id field; the
	// wire form must keep it greppable.
	ev := Event{Kind: KindCallNumber, RoomID: "abc", Index: 3}
	encoded, err := ev.Encode()
	require.NoError(t, err)
	assert.Contains(t, encoded, fmt.Sprintf(`"room_id":%q`, "abc"))
}
