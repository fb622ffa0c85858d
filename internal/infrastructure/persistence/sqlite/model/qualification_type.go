package model

type QualificationType struct {
	ID                    uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Code                  string `gorm:"column:code;type:text;not null;uniqueIndex"`
	Name                  string `gorm:"column:name;type:text;not null"`
	RegulatoryBody        string `gorm:"column:regulatory_body;type:text;not null;default:''"`
	DefaultIntervalMonths *int   `gorm:"column:default_interval_months"`
	IsActive              bool   `gorm:"column:is_active;not null"`
	CreatedAt             string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt             string `gorm:"column:updated_at;type:text;not null"`
}

func (QualificationType) TableName() string {
	return "qualification_types"
}
