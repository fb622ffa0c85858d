package compliance

import (
	"context"
	"strings"
	"time"

	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

// Priority scores one car from its records' dates as of now (zero now uses
// the clock). The persisted status column is not consulted.
func (s *Service) Priority(ctx context.Context, carID string, now time.Time) (domain.PriorityResult, error) {
	if err := s.ready(ctx); err != nil {
		return domain.PriorityResult{}, err
	}

	carID = strings.TrimSpace(carID)
	if carID == "" {
		return domain.PriorityResult{}, domain.ErrCarIDRequired
	}

	records, err := s.repo.ListQualifications(ctx, ports.QualificationFilter{CarID: carID}, ports.Page{})
	if err != nil {
		return domain.PriorityResult{}, err
	}
	return domain.BuildPriority(carID, records, s.resolveNow(now)), nil
}
