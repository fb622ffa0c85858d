package compliance

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

// Complete records a completion event. It returns (nil, nil) when id is unknown.
// The date is validated before any store access.
func (s *Service) Complete(ctx context.Context, id uint64, input CompleteQualificationInput, actorID string) (*domain.Qualification, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	logCtx := logging.WithAttrs(s.logCtx(ctx, "complete"), slog.Uint64("qualification_id", id))

	completed, err := domain.ParseDate("completed_date", input.CompletedDate)
	if err != nil {
		return nil, err
	}

	actorID = normalizeActor(actorID)
	now := s.now().UTC()

	var updated *domain.Qualification
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetQualification(txCtx, id)
		if err != nil {
			if errors.Is(err, domain.ErrQualificationNotFound) {
				return nil
			}
			return err
		}
		if input.ExpectedUpdatedAt != nil && !record.UpdatedAt.Equal(input.ExpectedUpdatedAt.UTC()) {
			return domain.ErrStaleQualification
		}

		typeDefault, err := s.typeDefaultInterval(txCtx, record.QualificationTypeID)
		if err != nil {
			return err
		}
		interval := domain.EffectiveInterval(record.IntervalMonths, typeDefault)
		nextDue, expiry := domain.ComputeNextDue(completed, &interval)
		status := domain.DeriveStatus(record.IsExempt, &nextDue, now)

		if err := s.repo.SaveCompletion(txCtx, ports.QualificationCompletion{
			ID:                 id,
			LastCompletedDate:  completed,
			NextDueDate:        nextDue,
			ExpiryDate:         expiry,
			Status:             status,
			CompletedBy:        strings.TrimSpace(input.CompletedBy),
			CompletionShopCode: strings.TrimSpace(input.CompletionShopCode),
			CertificateNumber:  strings.TrimSpace(input.CertificateNumber),
			Notes:              input.Notes,
			UpdatedAt:          now,
		}); err != nil {
			return err
		}

		if err := s.repo.AppendHistory(txCtx, domain.HistoryEvent{
			EntityType: domain.EntityQualification,
			EntityID:   id,
			Action:     domain.ActionCompleted,
			ActorID:    actorID,
			Payload: map[string]any{
				"completed_date":         completed.Format(domain.DateLayout),
				"interval_months":        interval,
				"previous_next_due_date": domain.FormatDate(record.NextDueDate),
				"next_due_date":          nextDue.Format(domain.DateLayout),
				"expiry_date":            expiry.Format(domain.DateLayout),
				"previous_status":        string(record.Status),
				"status":                 string(status),
				"completed_by":           strings.TrimSpace(input.CompletedBy),
				"completion_shop_code":   strings.TrimSpace(input.CompletionShopCode),
				"certificate_number":     strings.TrimSpace(input.CertificateNumber),
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		reloaded, err := s.repo.GetQualification(txCtx, id)
		if err != nil {
			return err
		}
		updated = &reloaded
		return nil
	}); err != nil {
		return nil, err
	}

	if updated == nil {
		logging.Info(logCtx, "qualification not found, nothing completed")
		return nil, nil
	}

	logging.Info(logCtx, "qualification completed",
		slog.String("next_due_date", domain.FormatDate(updated.NextDueDate)),
		slog.String("status", string(updated.Status)),
	)
	s.invalidateStats(logCtx)
	return updated, nil
}
