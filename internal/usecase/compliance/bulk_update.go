package compliance

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
)

// BulkUpdate applies patch to up to BulkUpdateLimit records in one transaction.
// History for each affected id is written in the background after commit;
// its failures are logged and never undo the update.
func (s *Service) BulkUpdate(ctx context.Context, ids []uint64, patch domain.BulkPatch, actorID string) (BulkUpdateResult, error) {
	if len(ids) == 0 {
		return BulkUpdateResult{}, nil
	}
	if len(ids) > domain.BulkUpdateLimit {
		return BulkUpdateResult{}, &domain.LimitError{Operation: "bulk update", Limit: domain.BulkUpdateLimit, Got: len(ids)}
	}
	if err := s.ready(ctx); err != nil {
		return BulkUpdateResult{}, err
	}

	normalized, err := patch.Normalize()
	if err != nil {
		return BulkUpdateResult{}, err
	}
	if normalized.IsEmpty() {
		return BulkUpdateResult{}, nil
	}

	batchID := uuid.NewString()
	logCtx := logging.WithAttrs(s.logCtx(ctx, "bulk_update"), slog.String("batch_id", batchID))
	actorID = normalizeActor(actorID)
	now := s.now().UTC()

	var affected []uint64
	var updated int64
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ExistingQualificationIDs(txCtx, dedupeIDs(ids))
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return nil
		}

		updated, err = s.repo.ApplyBulkPatch(txCtx, found, normalized, now)
		if err != nil {
			return err
		}

		if normalized.IsExempt != nil && !*normalized.IsExempt {
			records, err := s.repo.ListQualificationsByIDs(txCtx, found)
			if err != nil {
				return err
			}
			for _, record := range records {
				if err := s.repo.SetStatus(txCtx, record.ID, record.Derive(now), now); err != nil {
					return err
				}
			}
		}

		affected = found
		return nil
	}); err != nil {
		return BulkUpdateResult{}, err
	}

	bulkUpdatedRecords.Add(float64(updated))
	fields := normalized.Fields()
	for _, id := range affected {
		payload := make(map[string]any, len(fields)+1)
		for key, value := range fields {
			payload[key] = value
		}
		payload["batch_id"] = batchID
		s.history.Enqueue(logCtx, domain.HistoryEvent{
			EntityType: domain.EntityQualification,
			EntityID:   id,
			Action:     domain.ActionBulkUpdated,
			ActorID:    actorID,
			Payload:    payload,
			CreatedAt:  now,
		})
	}

	logging.Info(logCtx, "bulk update applied",
		slog.Int("requested", len(ids)),
		slog.Int64("updated", updated),
	)
	if updated > 0 {
		s.invalidateStats(logCtx)
	}
	return BulkUpdateResult{Updated: updated, BatchID: batchID}, nil
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
