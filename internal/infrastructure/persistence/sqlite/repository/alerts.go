package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/model"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

type alertRow struct {
	model.Alert `gorm:"embedded"`
	CarID       *string `gorm:"column:car_id"`
	TypeCode    *string `gorm:"column:type_code"`
}

func alertQuery(db *gorm.DB, filter ports.AlertFilter) *gorm.DB {
	query := db.Table("qualification_alerts AS a").
		Joins("LEFT JOIN qualifications q ON q.id = a.qualification_id").
		Joins("LEFT JOIN qualification_types t ON t.id = q.qualification_type_id")

	if filter.Acknowledged != nil {
		query = query.Where("a.is_acknowledged = ?", *filter.Acknowledged)
	}
	if filter.AlertType != "" {
		query = query.Where("a.alert_type = ?", string(filter.AlertType))
	}
	if carID := strings.TrimSpace(filter.CarID); carID != "" {
		query = query.Where("q.car_id = ?", carID)
	}
	if filter.QualificationID > 0 {
		query = query.Where("a.qualification_id = ?", filter.QualificationID)
	}
	return query
}

func (r *ComplianceRepository) ListAlerts(ctx context.Context, filter ports.AlertFilter, page ports.Page) ([]compliance.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := alertQuery(db, filter).
		Select("a.*, q.car_id AS car_id, t.code AS type_code").
		Order("a.created_at desc, a.id desc")
	if page.Limit > 0 {
		query = query.Limit(page.Limit)
	}
	if page.Offset > 0 {
		query = query.Offset(page.Offset)
	}

	var rows []alertRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query alerts")
	}

	items := make([]compliance.Alert, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAlert(row))
	}
	return items, nil
}

func (r *ComplianceRepository) CountAlerts(ctx context.Context, filter ports.AlertFilter) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := alertQuery(db, filter).Count(&total).Error; err != nil {
		return 0, errs.Wrap(err, "count alerts")
	}
	return total, nil
}

// AcknowledgeAlert only touches a pending alert. It reports false for an
// already acknowledged or unknown id.
func (r *ComplianceRepository) AcknowledgeAlert(ctx context.Context, id uint64, actorID string, at time.Time) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.Alert{}).
		Where("id = ? AND is_acknowledged = ?", id, false).
		Updates(map[string]any{
			"is_acknowledged": true,
			"acknowledged_by": optionalText(actorID),
			"acknowledged_at": formatTimestamp(at),
		})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "acknowledge alert")
	}
	return result.RowsAffected > 0, nil
}

// InsertAlert stores a generated alert. Generation runs outside this engine;
// the method exists for loaders and tests.
func (r *ComplianceRepository) InsertAlert(ctx context.Context, alert compliance.Alert) (compliance.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return compliance.Alert{}, err
	}

	createdAt := alert.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	row := model.Alert{
		QualificationID: alert.QualificationID,
		AlertType:       string(alert.AlertType),
		DaysUntilDue:    alert.DaysUntilDue,
		NextDueDate:     formatDatePtr(alert.NextDueDate),
		IsAcknowledged:  alert.IsAcknowledged,
		AcknowledgedBy:  optionalText(alert.AcknowledgedBy),
		CreatedAt:       formatTimestamp(createdAt),
	}
	if alert.AcknowledgedAt != nil {
		acknowledgedAt := formatTimestamp(*alert.AcknowledgedAt)
		row.AcknowledgedAt = &acknowledgedAt
	}
	if err := db.Create(&row).Error; err != nil {
		return compliance.Alert{}, errs.Wrap(err, "insert alert")
	}

	alert.ID = row.ID
	alert.CreatedAt = parseTimestamp(row.CreatedAt)
	return alert, nil
}

func mapAlert(row alertRow) compliance.Alert {
	return compliance.Alert{
		ID:              row.ID,
		QualificationID: row.QualificationID,
		CarID:           textValue(row.CarID),
		TypeCode:        textValue(row.TypeCode),
		AlertType:       compliance.AlertType(row.AlertType),
		DaysUntilDue:    row.DaysUntilDue,
		NextDueDate:     parseDatePtr(row.NextDueDate),
		IsAcknowledged:  row.IsAcknowledged,
		AcknowledgedBy:  textValue(row.AcknowledgedBy),
		AcknowledgedAt:  parseTimestampPtr(row.AcknowledgedAt),
		CreatedAt:       parseTimestamp(row.CreatedAt),
	}
}
