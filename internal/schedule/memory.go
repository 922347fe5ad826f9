package schedule

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node dev runs.
// It honors the same contract as the external backends, including
// exactly-once removal under concurrent drains.
type MemoryStore struct {
	mu  sync.Mutex
	pq  eventHeap
	seq uint64

	// test hook; defaults to time.Now
	now func() time.Time
}

type timedEvent struct {
	ev    Event
	dueAt time.Time
	seq   uint64 // insertion order tiebreak for equal due times
}

type eventHeap []timedEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].dueAt.Equal(h[j].dueAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].dueAt.Before(h[j].dueAt)
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(timedEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Schedule(_ context.Context, ev Event, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	heap.Push(&m.pq, timedEvent{ev: ev, dueAt: m.now().Add(delay), seq: m.seq})
	return nil
}

func (m *MemoryStore) DrainDue(_ context.Context, limit int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var due []Event
	for len(due) < limit && m.pq.Len() > 0 {
		if m.pq[0].dueAt.After(now) {
			break
		}
		due = append(due, heap.Pop(&m.pq).(timedEvent).ev)
	}
	return due, nil
}

func (m *MemoryStore) CancelRoom(ctx context.Context, roomID string) error {
	return m.cancel(ctx, func(ev Event) bool { return ev.RoomID == roomID })
}

// cancel removes pending events matching the predicate.
func (m *MemoryStore) cancel(_ context.Context, match func(Event) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.pq[:0]
	for _, te := range m.pq {
		if !match(te.ev) {
			kept = append(kept, te)
		}
	}
	m.pq = kept
	heap.Init(&m.pq)
	return nil
}

// Pending reports the number of queued events, for tests.
func (m *MemoryStore) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pq.Len()
}

func (m *MemoryStore) Close() error { return nil }
