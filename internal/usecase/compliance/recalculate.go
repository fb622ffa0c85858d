package compliance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

// RecalculateAll re-derives the status of every non-exempt record against a
// single now and writes only the ones that changed. A zero now uses the clock.
//
// Each chunk runs in its own transaction. A record modified since it was read
// is skipped; a failed write is logged and the pass continues.
func (s *Service) RecalculateAll(ctx context.Context, now time.Time) (RecalculateResult, error) {
	if err := s.ready(ctx); err != nil {
		return RecalculateResult{}, err
	}

	now = s.resolveNow(now)
	logCtx := logging.WithAttrs(s.logCtx(ctx, "recalculate"), slog.String("as_of", now.Format(domain.DateLayout)))
	started := time.Now()

	var result RecalculateResult
	var lastID uint64
	for {
		if err := ctx.Err(); err != nil {
			return result, errs.Wrap(err, "check context")
		}

		var chunk []domain.Qualification
		var changes []ports.StatusChangedEvent
		chunkStats := RecalculateResult{}
		err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
			var err error
			chunk, err = s.repo.ScanNonExempt(txCtx, lastID, s.recalcChunkSize)
			if err != nil {
				return err
			}

			writeAt := s.now().UTC()
			for _, record := range chunk {
				next := record.Derive(now)
				if next == record.Status {
					continue
				}

				ok, err := s.repo.CompareAndSetStatus(txCtx, ports.StatusChange{
					ID:            record.ID,
					FromStatus:    record.Status,
					ToStatus:      next,
					PrevUpdatedAt: record.UpdatedAt,
					UpdatedAt:     writeAt,
				})
				if err != nil {
					chunkStats.Failed++
					logging.Error(logCtx, "status write failed, record skipped",
						slog.Uint64("qualification_id", record.ID),
						slog.Any("err", errs.Loggable(err)),
					)
					continue
				}
				if !ok {
					chunkStats.Conflicts++
					recalcConflicts.Inc()
					continue
				}

				chunkStats.Updated++
				changes = append(changes, ports.StatusChangedEvent{
					QualificationID: record.ID,
					CarID:           record.CarID,
					FromStatus:      string(record.Status),
					ToStatus:        string(next),
					NextDueDate:     domain.FormatDate(record.NextDueDate),
					OccurredAt:      writeAt,
				})
			}
			return nil
		})
		if err != nil {
			if len(chunk) == 0 {
				return result, err
			}
			logging.Error(logCtx, "recalculation chunk failed, continuing",
				slog.Uint64("after_id", lastID),
				slog.Any("err", errs.Loggable(err)),
			)
			result.Failed += len(chunk)
		} else {
			result.Updated += chunkStats.Updated
			result.Conflicts += chunkStats.Conflicts
			result.Failed += chunkStats.Failed
			for _, change := range changes {
				statusTransitions.WithLabelValues(change.FromStatus, change.ToStatus).Inc()
				s.publishBestEffort(logCtx, change)
			}
		}

		result.Scanned += len(chunk)
		if len(chunk) < s.recalcChunkSize {
			break
		}
		lastID = chunk[len(chunk)-1].ID
	}

	recalcDuration.Observe(time.Since(started).Seconds())
	logging.Info(logCtx, "recalculation finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("updated", result.Updated),
		slog.Int("conflicts", result.Conflicts),
		slog.Int("failed", result.Failed),
	)
	if result.Updated > 0 {
		s.invalidateStats(logCtx)
	}
	return result, nil
}

func (s *Service) publishBestEffort(ctx context.Context, event ports.StatusChangedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStatusChanged(ctx, event); err != nil {
		logging.Warn(ctx, "publish status change failed",
			slog.Uint64("qualification_id", event.QualificationID),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}
