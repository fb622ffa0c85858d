package compliance

import (
	"context"
	"log/slog"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

// ListAlerts returns one page of alerts and the total matching the filter.
func (s *Service) ListAlerts(ctx context.Context, filter ports.AlertFilter, page ports.Page) (ListAlertsResult, error) {
	if err := s.ready(ctx); err != nil {
		return ListAlertsResult{}, err
	}

	alerts, err := s.repo.ListAlerts(ctx, filter, normalizePage(page))
	if err != nil {
		return ListAlertsResult{}, err
	}
	total, err := s.repo.CountAlerts(ctx, filter)
	if err != nil {
		return ListAlertsResult{}, err
	}
	return ListAlertsResult{Alerts: alerts, Total: total}, nil
}

// AcknowledgeAlert returns false, not an error, when the alert is unknown or
// already acknowledged.
func (s *Service) AcknowledgeAlert(ctx context.Context, id uint64, actorID string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}

	actorID = normalizeActor(actorID)
	ok, err := s.repo.AcknowledgeAlert(ctx, id, actorID, s.now().UTC())
	if err != nil {
		return false, err
	}

	logCtx := logging.WithAttrs(s.logCtx(ctx, "acknowledge_alert"), slog.Uint64("alert_id", id))
	if !ok {
		logging.Info(logCtx, "alert already acknowledged or missing")
		return false, nil
	}

	alertsAcknowledged.Inc()
	logging.Info(logCtx, "alert acknowledged", slog.String("acknowledged_by", actorID))
	s.invalidateStats(logCtx)
	return true, nil
}
