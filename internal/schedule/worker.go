package schedule

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Handler applies one drained event. It must be idempotent: the worker
// guarantees ordering within a drain batch but the system as a whole is
// at-least-once.
type Handler func(ctx context.Context, ev Event)

// Worker polls the store for due events and hands them to the handler.
// Any number of workers, in any number of processes, can poll the same
// store; the store's drain contract keeps them from double-applying.
type Worker struct {
	store    Store
	handler  Handler
	interval time.Duration
	limit    int
	log      *zap.SugaredLogger
}

func NewWorker(store Store, handler Handler, interval time.Duration, limit int, log *zap.SugaredLogger) *Worker {
	return &Worker{
		store:    store,
		handler:  handler,
		interval: interval,
		limit:    limit,
		log:      log,
	}
}

// Run polls until ctx is cancelled. A failed poll only delays events;
// it backs off and tries again rather than giving up.
func (w *Worker) Run(ctx context.Context) {
	w.log.Infof("[Worker] polling every %v, batch limit %d", w.interval, w.limit)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	backoff := w.interval
	for {
		select {
		case <-ctx.Done():
			w.log.Infof("[Worker] stopping: %v", ctx.Err())
			return
		case <-ticker.C:
			events, err := w.store.DrainDue(ctx, w.limit)
			if err != nil {
				if errors.Is(err, ErrStoreUnavailable) {
					backoff = min(backoff*2, 10*time.Second)
					w.log.Warnf("[Worker] drain failed, backing off %v: %v", backoff, err)
					ticker.Reset(backoff)
					continue
				}
				w.log.Errorf("[Worker] drain failed: %v", err)
				continue
			}
			if backoff != w.interval {
				backoff = w.interval
				ticker.Reset(w.interval)
			}

			for _, ev := range events {
				w.handler(ctx, ev)
			}
		}
	}
}
