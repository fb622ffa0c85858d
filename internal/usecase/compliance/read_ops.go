package compliance

import (
	"context"
	"errors"

	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

func (s *Service) ListQualificationTypes(ctx context.Context, includeInactive bool) ([]domain.QualificationType, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListQualificationTypes(ctx, includeInactive)
}

func (s *Service) ListQualifications(ctx context.Context, filter ports.QualificationFilter, page ports.Page) (ListQualificationsResult, error) {
	if err := s.ready(ctx); err != nil {
		return ListQualificationsResult{}, err
	}
	if filter.Status != "" {
		if _, ok := domain.ParseStatus(string(filter.Status)); !ok {
			return ListQualificationsResult{}, errs.Wrapf(domain.ErrInvalidInput, "unknown status %q", filter.Status)
		}
	}

	items, err := s.repo.ListQualifications(ctx, filter, normalizePage(page))
	if err != nil {
		return ListQualificationsResult{}, err
	}
	total, err := s.repo.CountQualifications(ctx, filter)
	if err != nil {
		return ListQualificationsResult{}, err
	}
	return ListQualificationsResult{Qualifications: items, Total: total}, nil
}

// Get returns (nil, nil) for an unknown id.
func (s *Service) Get(ctx context.Context, id uint64) (*domain.Qualification, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	record, err := s.repo.GetQualification(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrQualificationNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// History lists the audit trail of one record, oldest first.
func (s *Service) History(ctx context.Context, id uint64) ([]domain.HistoryEvent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, domain.EntityQualification, id)
}
