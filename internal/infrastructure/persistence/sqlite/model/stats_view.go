package model

// StatsViewName is the pre-aggregated fleet snapshot read by the stats query.
const StatsViewName = "v_qualification_stats"

// StatsViewSQL works on sqlite and postgres.
const StatsViewSQL = `CREATE VIEW v_qualification_stats AS
SELECT
	COUNT(*) AS total_qualifications,
	COALESCE(SUM(CASE WHEN q.status = 'current' THEN 1 ELSE 0 END), 0) AS current,
	COALESCE(SUM(CASE WHEN q.status = 'due_soon' THEN 1 ELSE 0 END), 0) AS due_soon,
	COALESCE(SUM(CASE WHEN q.status = 'due' THEN 1 ELSE 0 END), 0) AS due,
	COALESCE(SUM(CASE WHEN q.status = 'overdue' THEN 1 ELSE 0 END), 0) AS overdue,
	COALESCE(SUM(CASE WHEN q.status = 'exempt' THEN 1 ELSE 0 END), 0) AS exempt,
	COALESCE(SUM(CASE WHEN q.status = 'unknown' THEN 1 ELSE 0 END), 0) AS unknown,
	COUNT(DISTINCT CASE WHEN q.status = 'overdue' THEN q.car_id END) AS overdue_cars,
	COUNT(DISTINCT CASE WHEN q.status = 'due' THEN q.car_id END) AS due_cars,
	(SELECT COUNT(*) FROM qualification_alerts a WHERE a.is_acknowledged = false) AS unacknowledged_alerts
FROM qualifications q
HAVING COUNT(*) > 0`

// StatsRow maps one row of v_qualification_stats.
type StatsRow struct {
	TotalQualifications  int64 `gorm:"column:total_qualifications"`
	Current              int64 `gorm:"column:current"`
	DueSoon              int64 `gorm:"column:due_soon"`
	Due                  int64 `gorm:"column:due"`
	Overdue              int64 `gorm:"column:overdue"`
	Exempt               int64 `gorm:"column:exempt"`
	Unknown              int64 `gorm:"column:unknown"`
	OverdueCars          int64 `gorm:"column:overdue_cars"`
	DueCars              int64 `gorm:"column:due_cars"`
	UnacknowledgedAlerts int64 `gorm:"column:unacknowledged_alerts"`
}
