package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the "database table polled on an index" backend: the
// same contract as the redis sorted set, for deployments that already
// run postgres and nothing else. FOR UPDATE SKIP LOCKED gives concurrent
// workers non-overlapping drains.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scheduled_events (
	id      BIGSERIAL PRIMARY KEY,
	room_id TEXT        NOT NULL,
	payload JSONB       NOT NULL,
	due_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS scheduled_events_due_at_idx ON scheduled_events (due_at);
CREATE INDEX IF NOT EXISTS scheduled_events_room_id_idx ON scheduled_events (room_id);
`

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: pgx pool: %v", ErrStoreUnavailable, err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ensure schema: %v", ErrStoreUnavailable, err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Schedule(ctx context.Context, ev Event, delay time.Duration) error {
	payload, err := ev.Encode()
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO scheduled_events (room_id, payload, due_at) VALUES ($1, $2, $3)`,
		ev.RoomID, payload, time.Now().Add(delay))
	if err != nil {
		return fmt.Errorf("%w: insert: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (p *PostgresStore) DrainDue(ctx context.Context, limit int) ([]Event, error) {
	rows, err := p.pool.Query(ctx, `
		DELETE FROM scheduled_events
		WHERE id IN (
			SELECT id FROM scheduled_events
			WHERE due_at <= now()
			ORDER BY due_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING payload, due_at`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: drain: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	// DELETE ... RETURNING has no output ordering, so re-sort by due time.
	type drained struct {
		ev    Event
		dueAt time.Time
	}
	var batch []drained
	for rows.Next() {
		var payload string
		var dueAt time.Time
		if err := rows.Scan(&payload, &dueAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStoreUnavailable, err)
		}
		ev, err := DecodeEvent(payload)
		if err != nil {
			continue
		}
		batch = append(batch, drained{ev: ev, dueAt: dueAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrStoreUnavailable, err)
	}

	sort.Slice(batch, func(i, j int) bool { return batch[i].dueAt.Before(batch[j].dueAt) })
	events := make([]Event, 0, len(batch))
	for _, d := range batch {
		events = append(events, d.ev)
	}
	return events, nil
}

func (p *PostgresStore) CancelRoom(ctx context.Context, roomID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM scheduled_events WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("%w: cancel: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
