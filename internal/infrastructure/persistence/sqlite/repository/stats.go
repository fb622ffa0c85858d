package repository

import (
	"context"

	"github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/model"
)

func (r *ComplianceRepository) ReadStatsSnapshot(ctx context.Context) (compliance.FleetStats, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return compliance.FleetStats{}, false, err
	}

	var rows []model.StatsRow
	if err := db.Table(model.StatsViewName).Limit(1).Find(&rows).Error; err != nil {
		return compliance.FleetStats{}, false, errs.Wrap(err, "query stats snapshot")
	}
	if len(rows) == 0 {
		return compliance.FleetStats{}, false, nil
	}

	row := rows[0]
	return compliance.FleetStats{
		TotalQualifications:  row.TotalQualifications,
		Current:              row.Current,
		DueSoon:              row.DueSoon,
		Due:                  row.Due,
		Overdue:              row.Overdue,
		Exempt:               row.Exempt,
		Unknown:              row.Unknown,
		OverdueCars:          row.OverdueCars,
		DueCars:              row.DueCars,
		UnacknowledgedAlerts: row.UnacknowledgedAlerts,
	}, true, nil
}
