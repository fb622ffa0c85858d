package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/model"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

type qualificationRow struct {
	model.Qualification `gorm:"embedded"`
	TypeCode            *string `gorm:"column:type_code"`
	TypeName            *string `gorm:"column:type_name"`
}

func qualificationQuery(db *gorm.DB) *gorm.DB {
	return db.Table("qualifications AS q").
		Joins("LEFT JOIN qualification_types t ON t.id = q.qualification_type_id")
}

func applyQualificationFilter(query *gorm.DB, filter ports.QualificationFilter) *gorm.DB {
	if carID := strings.TrimSpace(filter.CarID); carID != "" {
		query = query.Where("q.car_id = ?", carID)
	}
	if filter.Status != "" {
		query = query.Where("q.status = ?", string(filter.Status))
	}
	if filter.TypeID > 0 {
		query = query.Where("q.qualification_type_id = ?", filter.TypeID)
	}
	if code := strings.TrimSpace(filter.TypeCode); code != "" {
		query = query.Where("t.code = ?", code)
	}
	return query
}

func findQualifications(query *gorm.DB) ([]compliance.Qualification, error) {
	var rows []qualificationRow
	if err := query.
		Select("q.*, t.code AS type_code, t.name AS type_name").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query qualifications")
	}

	items := make([]compliance.Qualification, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapQualification(row))
	}
	return items, nil
}

func (r *ComplianceRepository) ListQualifications(ctx context.Context, filter ports.QualificationFilter, page ports.Page) ([]compliance.Qualification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := applyQualificationFilter(qualificationQuery(db), filter).
		Order("q.next_due_date IS NULL, q.next_due_date asc, q.id asc")
	if page.Limit > 0 {
		query = query.Limit(page.Limit)
	}
	if page.Offset > 0 {
		query = query.Offset(page.Offset)
	}
	return findQualifications(query)
}

func (r *ComplianceRepository) CountQualifications(ctx context.Context, filter ports.QualificationFilter) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := applyQualificationFilter(qualificationQuery(db), filter).Count(&total).Error; err != nil {
		return 0, errs.Wrap(err, "count qualifications")
	}
	return total, nil
}

func (r *ComplianceRepository) GetQualification(ctx context.Context, id uint64) (compliance.Qualification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return compliance.Qualification{}, err
	}

	items, err := findQualifications(qualificationQuery(db).Where("q.id = ?", id).Limit(1))
	if err != nil {
		return compliance.Qualification{}, err
	}
	if len(items) == 0 {
		return compliance.Qualification{}, compliance.ErrQualificationNotFound
	}
	return items[0], nil
}

func (r *ComplianceRepository) ListQualificationsByIDs(ctx context.Context, ids []uint64) ([]compliance.Qualification, error) {
	if len(ids) == 0 {
		return []compliance.Qualification{}, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return findQualifications(qualificationQuery(db).Where("q.id IN ?", ids).Order("q.id asc"))
}

func (r *ComplianceRepository) QualificationExists(ctx context.Context, carID string, typeID uint64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.Qualification{}).
		Where("car_id = ? AND qualification_type_id = ?", carID, typeID).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count qualifications by car and type")
	}
	return count > 0, nil
}

func (r *ComplianceRepository) InsertQualification(ctx context.Context, q compliance.Qualification) (compliance.Qualification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return compliance.Qualification{}, err
	}

	row := model.Qualification{
		CarID:               q.CarID,
		QualificationTypeID: q.QualificationTypeID,
		IntervalMonths:      q.IntervalMonths,
		LastCompletedDate:   formatDatePtr(q.LastCompletedDate),
		NextDueDate:         formatDatePtr(q.NextDueDate),
		ExpiryDate:          formatDatePtr(q.ExpiryDate),
		Status:              string(q.Status),
		IsExempt:            q.IsExempt,
		ExemptReason:        optionalText(q.ExemptReason),
		CompletedBy:         optionalText(q.CompletedBy),
		CompletionShopCode:  optionalText(q.CompletionShopCode),
		CertificateNumber:   optionalText(q.CertificateNumber),
		Notes:               optionalText(q.Notes),
		CreatedAt:           formatTimestamp(q.CreatedAt),
		UpdatedAt:           formatTimestamp(q.UpdatedAt),
	}
	if err := db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return compliance.Qualification{}, compliance.ErrDuplicateQualification
		}
		return compliance.Qualification{}, errs.Wrap(err, "insert qualification")
	}

	return r.GetQualification(ctx, row.ID)
}

func (r *ComplianceRepository) SaveCompletion(ctx context.Context, input ports.QualificationCompletion) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	last := input.LastCompletedDate
	next := input.NextDueDate
	expiry := input.ExpiryDate
	updates := map[string]any{
		"last_completed_date":  formatDatePtr(&last),
		"next_due_date":        formatDatePtr(&next),
		"expiry_date":          formatDatePtr(&expiry),
		"status":               string(input.Status),
		"completed_by":         optionalText(input.CompletedBy),
		"completion_shop_code": optionalText(input.CompletionShopCode),
		"certificate_number":   optionalText(input.CertificateNumber),
		"updated_at":           formatTimestamp(input.UpdatedAt),
	}
	if input.Notes != nil {
		updates["notes"] = optionalText(*input.Notes)
	}

	result := db.Model(&model.Qualification{}).Where("id = ?", input.ID).Updates(updates)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update qualification completion")
	}
	if result.RowsAffected == 0 {
		return compliance.ErrQualificationNotFound
	}
	return nil
}

func (r *ComplianceRepository) ExistingQualificationIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return []uint64{}, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var found []uint64
	if err := db.Model(&model.Qualification{}).
		Where("id IN ?", ids).
		Order("id asc").
		Pluck("id", &found).Error; err != nil {
		return nil, errs.Wrap(err, "query qualification ids")
	}
	return found, nil
}

// ApplyBulkPatch writes patch to every id in one statement. Setting
// is_exempt=true also sets status=exempt; clearing it leaves the status for
// the caller to re-derive.
func (r *ComplianceRepository) ApplyBulkPatch(ctx context.Context, ids []uint64, patch compliance.BulkPatch, updatedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	updates := map[string]any{"updated_at": formatTimestamp(updatedAt)}
	if patch.IsExempt != nil {
		updates["is_exempt"] = *patch.IsExempt
		if *patch.IsExempt {
			updates["status"] = string(compliance.StatusExempt)
		} else if patch.ExemptReason == nil {
			updates["exempt_reason"] = nil
		}
	}
	if patch.ExemptReason != nil {
		updates["exempt_reason"] = optionalText(*patch.ExemptReason)
	}
	if patch.Notes != nil {
		updates["notes"] = optionalText(*patch.Notes)
	}

	result := db.Model(&model.Qualification{}).Where("id IN ?", ids).Updates(updates)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "bulk update qualifications")
	}
	return result.RowsAffected, nil
}

func (r *ComplianceRepository) SetStatus(ctx context.Context, id uint64, status compliance.Status, updatedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Qualification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": formatTimestamp(updatedAt),
		}).Error; err != nil {
		return errs.Wrap(err, "update qualification status")
	}
	return nil
}

// ScanNonExempt returns up to limit non-exempt records with id > afterID in id order.
func (r *ComplianceRepository) ScanNonExempt(ctx context.Context, afterID uint64, limit int) ([]compliance.Qualification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := qualificationQuery(db).
		Where("q.id > ? AND q.is_exempt = ?", afterID, false).
		Order("q.id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return findQualifications(query)
}

func (r *ComplianceRepository) CompareAndSetStatus(ctx context.Context, change ports.StatusChange) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.Qualification{}).
		Where("id = ? AND status = ? AND updated_at = ? AND is_exempt = ?",
			change.ID, string(change.FromStatus), formatTimestamp(change.PrevUpdatedAt), false).
		Updates(map[string]any{
			"status":     string(change.ToStatus),
			"updated_at": formatTimestamp(change.UpdatedAt),
		})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "conditional status update")
	}
	return result.RowsAffected > 0, nil
}

func mapQualification(row qualificationRow) compliance.Qualification {
	return compliance.Qualification{
		ID:                  row.ID,
		CarID:               row.CarID,
		QualificationTypeID: row.QualificationTypeID,
		TypeCode:            textValue(row.TypeCode),
		TypeName:            textValue(row.TypeName),
		IntervalMonths:      row.IntervalMonths,
		LastCompletedDate:   parseDatePtr(row.LastCompletedDate),
		NextDueDate:         parseDatePtr(row.NextDueDate),
		ExpiryDate:          parseDatePtr(row.ExpiryDate),
		Status:              compliance.Status(row.Status),
		IsExempt:            row.IsExempt,
		ExemptReason:        textValue(row.ExemptReason),
		CompletedBy:         textValue(row.CompletedBy),
		CompletionShopCode:  textValue(row.CompletionShopCode),
		CertificateNumber:   textValue(row.CertificateNumber),
		Notes:               textValue(row.Notes),
		CreatedAt:           parseTimestamp(row.CreatedAt),
		UpdatedAt:           parseTimestamp(row.UpdatedAt),
	}
}
