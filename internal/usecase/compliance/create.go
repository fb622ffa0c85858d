package compliance

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
)

// Create validates input, inserts the record and writes its created history
// event in one transaction.
func (s *Service) Create(ctx context.Context, input CreateQualificationInput, actorID string) (domain.Qualification, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Qualification{}, err
	}
	logCtx := s.logCtx(ctx, "create")

	carID := strings.TrimSpace(input.CarID)
	if carID == "" {
		return domain.Qualification{}, domain.ErrCarIDRequired
	}
	lastCompleted, err := domain.ParseOptionalDate("last_completed_date", input.LastCompletedDate)
	if err != nil {
		return domain.Qualification{}, err
	}
	nextDue, err := domain.ParseOptionalDate("next_due_date", input.NextDueDate)
	if err != nil {
		return domain.Qualification{}, err
	}
	if input.IntervalMonths != nil && *input.IntervalMonths <= 0 {
		return domain.Qualification{}, errs.Wrap(domain.ErrInvalidInput, "interval_months must be positive")
	}
	exemptReason := strings.TrimSpace(input.ExemptReason)
	if input.IsExempt && exemptReason == "" {
		return domain.Qualification{}, domain.ErrExemptReasonRequired
	}
	if input.QualificationTypeID == 0 && strings.TrimSpace(input.TypeCode) == "" {
		return domain.Qualification{}, errs.Wrap(domain.ErrInvalidInput, "qualification_type_id or type_code is required")
	}

	actorID = normalizeActor(actorID)
	now := s.now().UTC()

	var created domain.Qualification
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		qt, err := s.lookupType(txCtx, input.QualificationTypeID, input.TypeCode)
		if err != nil {
			return err
		}

		exists, err := s.repo.QualificationExists(txCtx, carID, qt.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateQualification
		}

		record := domain.Qualification{
			CarID:               carID,
			QualificationTypeID: qt.ID,
			IntervalMonths:      input.IntervalMonths,
			LastCompletedDate:   lastCompleted,
			NextDueDate:         nextDue,
			IsExempt:            input.IsExempt,
			ExemptReason:        exemptReason,
			Notes:               strings.TrimSpace(input.Notes),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if lastCompleted != nil {
			interval := domain.EffectiveInterval(input.IntervalMonths, qt.DefaultIntervalMonths)
			due, expiry := domain.ComputeNextDue(*lastCompleted, &interval)
			record.NextDueDate = &due
			record.ExpiryDate = &expiry
		} else if nextDue != nil {
			expiry := domain.ExpiryFor(*nextDue)
			record.ExpiryDate = &expiry
		}
		record.Status = record.Derive(now)

		created, err = s.repo.InsertQualification(txCtx, record)
		if err != nil {
			return err
		}

		return s.repo.AppendHistory(txCtx, domain.HistoryEvent{
			EntityType: domain.EntityQualification,
			EntityID:   created.ID,
			Action:     domain.ActionCreated,
			ActorID:    actorID,
			Payload:    createdPayload(created),
			CreatedAt:  now,
		})
	}); err != nil {
		return domain.Qualification{}, err
	}

	logging.Info(logCtx, "qualification created",
		slog.Uint64("qualification_id", created.ID),
		slog.String("car_id", created.CarID),
		slog.String("status", string(created.Status)),
	)
	s.invalidateStats(logCtx)
	return created, nil
}

func (s *Service) lookupType(ctx context.Context, id uint64, code string) (domain.QualificationType, error) {
	if id > 0 {
		return s.repo.GetQualificationType(ctx, id)
	}
	return s.repo.GetQualificationTypeByCode(ctx, code)
}

// typeDefaultInterval tolerates a dangling type reference by falling back to no default.
func (s *Service) typeDefaultInterval(ctx context.Context, typeID uint64) (*int, error) {
	qt, err := s.repo.GetQualificationType(ctx, typeID)
	if err != nil {
		if errors.Is(err, domain.ErrQualificationTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return qt.DefaultIntervalMonths, nil
}

func createdPayload(q domain.Qualification) map[string]any {
	return map[string]any{
		"car_id":                q.CarID,
		"qualification_type_id": q.QualificationTypeID,
		"interval_months":       q.IntervalMonths,
		"last_completed_date":   domain.FormatDate(q.LastCompletedDate),
		"next_due_date":         domain.FormatDate(q.NextDueDate),
		"expiry_date":           domain.FormatDate(q.ExpiryDate),
		"status":                string(q.Status),
		"is_exempt":             q.IsExempt,
	}
}
