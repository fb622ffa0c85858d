package compliance

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

type historyJob struct {
	ctx   context.Context
	event domain.HistoryEvent
}

// historyDispatcher writes best-effort history events on one goroutine.
// Enqueue never blocks: a full or closed queue drops the event.
type historyDispatcher struct {
	repo  ports.HistoryRepository
	queue chan historyJob
	done  chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func newHistoryDispatcher(repo ports.HistoryRepository, size int) *historyDispatcher {
	d := &historyDispatcher{
		repo:  repo,
		queue: make(chan historyJob, size),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *historyDispatcher) Enqueue(ctx context.Context, event domain.HistoryEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.compliance.history"),
		slog.Uint64("entity_id", event.EntityID),
		slog.String("action", string(event.Action)),
	)
	if d.closed {
		historyDropped.Inc()
		logging.Warn(logCtx, "history dispatcher closed, event dropped")
		return false
	}

	select {
	case d.queue <- historyJob{ctx: context.WithoutCancel(logCtx), event: event}:
		return true
	default:
		historyDropped.Inc()
		logging.Warn(logCtx, "history queue full, event dropped")
		return false
	}
}

func (d *historyDispatcher) run() {
	defer close(d.done)
	for job := range d.queue {
		if d.repo == nil {
			continue
		}
		if err := d.repo.AppendHistory(job.ctx, job.event); err != nil {
			historyWriteFailures.Inc()
			logging.Error(job.ctx, "history write failed", slog.Any("err", errs.Loggable(err)))
		}
	}
}

// Close is idempotent. It returns ctx.Err() if draining outlives ctx.
func (d *historyDispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
