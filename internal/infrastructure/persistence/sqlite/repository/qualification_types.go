package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/model"
)

func (r *ComplianceRepository) ListQualificationTypes(ctx context.Context, includeInactive bool) ([]compliance.QualificationType, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.QualificationType{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var rows []model.QualificationType
	if err := query.Order("code asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query qualification types")
	}

	items := make([]compliance.QualificationType, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapQualificationType(row))
	}
	return items, nil
}

func (r *ComplianceRepository) GetQualificationType(ctx context.Context, id uint64) (compliance.QualificationType, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return compliance.QualificationType{}, err
	}
	return takeQualificationType(db.Where("id = ?", id))
}

func (r *ComplianceRepository) GetQualificationTypeByCode(ctx context.Context, code string) (compliance.QualificationType, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return compliance.QualificationType{}, err
	}
	return takeQualificationType(db.Where("code = ?", strings.TrimSpace(code)))
}

// UpsertQualificationType inserts or refreshes a type keyed by code.
func (r *ComplianceRepository) UpsertQualificationType(ctx context.Context, qt compliance.QualificationType) (compliance.QualificationType, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return compliance.QualificationType{}, err
	}

	code := strings.TrimSpace(qt.Code)
	if code == "" {
		return compliance.QualificationType{}, errs.Wrap(compliance.ErrInvalidInput, "qualification type code is required")
	}

	now := formatTimestamp(time.Now())
	row := model.QualificationType{
		Code:                  code,
		Name:                  strings.TrimSpace(qt.Name),
		RegulatoryBody:        strings.TrimSpace(qt.RegulatoryBody),
		DefaultIntervalMonths: qt.DefaultIntervalMonths,
		IsActive:              qt.IsActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "regulatory_body", "default_interval_months", "is_active", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return compliance.QualificationType{}, errs.Wrap(err, "upsert qualification type")
	}

	return takeQualificationType(db.Where("code = ?", code))
}

func takeQualificationType(query *gorm.DB) (compliance.QualificationType, error) {
	var row model.QualificationType
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return compliance.QualificationType{}, compliance.ErrQualificationTypeNotFound
		}
		return compliance.QualificationType{}, errs.Wrap(err, "query qualification type")
	}
	return mapQualificationType(row), nil
}

func mapQualificationType(row model.QualificationType) compliance.QualificationType {
	return compliance.QualificationType{
		ID:                    row.ID,
		Code:                  row.Code,
		Name:                  row.Name,
		RegulatoryBody:        row.RegulatoryBody,
		DefaultIntervalMonths: row.DefaultIntervalMonths,
		IsActive:              row.IsActive,
	}
}
