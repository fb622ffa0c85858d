package compliance

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
)

// Stats reads the fleet snapshot through the cache. An empty fleet yields
// an all-zero struct.
func (s *Service) Stats(ctx context.Context) (domain.FleetStats, error) {
	if err := s.ready(ctx); err != nil {
		return domain.FleetStats{}, err
	}
	logCtx := s.logCtx(ctx, "stats")

	if cached, ok := s.cachedStats(logCtx); ok {
		return cached, nil
	}

	stats, found, err := s.repo.ReadStatsSnapshot(ctx)
	if err != nil {
		return domain.FleetStats{}, err
	}
	if !found {
		stats = domain.FleetStats{}
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, string(encoded), s.statsTTL); err != nil {
				logging.Warn(logCtx, "write stats cache failed", slog.Any("err", errs.Loggable(err)))
			}
		}
	}
	return stats, nil
}

func (s *Service) cachedStats(ctx context.Context) (domain.FleetStats, bool) {
	if s.cache == nil {
		return domain.FleetStats{}, false
	}

	raw, found, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil {
		logging.Warn(ctx, "read stats cache failed", slog.Any("err", errs.Loggable(err)))
		return domain.FleetStats{}, false
	}
	if !found {
		return domain.FleetStats{}, false
	}

	var stats domain.FleetStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		logging.Warn(ctx, "decode stats cache failed", slog.Any("err", errs.Loggable(err)))
		return domain.FleetStats{}, false
	}
	return stats, true
}
