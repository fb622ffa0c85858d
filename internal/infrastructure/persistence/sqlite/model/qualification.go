package model

// Qualification stores dates as YYYY-MM-DD text and timestamps as RFC3339Nano text.
type Qualification struct {
	ID                  uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	CarID               string  `gorm:"column:car_id;type:text;not null;index;uniqueIndex:ux_qualifications_car_type,priority:1"`
	QualificationTypeID uint64  `gorm:"column:qualification_type_id;not null;uniqueIndex:ux_qualifications_car_type,priority:2"`
	IntervalMonths      *int    `gorm:"column:interval_months"`
	LastCompletedDate   *string `gorm:"column:last_completed_date;type:text"`
	NextDueDate         *string `gorm:"column:next_due_date;type:text"`
	ExpiryDate          *string `gorm:"column:expiry_date;type:text"`
	Status              string  `gorm:"column:status;type:text;not null;index"`
	IsExempt            bool    `gorm:"column:is_exempt;not null"`
	ExemptReason        *string `gorm:"column:exempt_reason;type:text"`
	CompletedBy         *string `gorm:"column:completed_by;type:text"`
	CompletionShopCode  *string `gorm:"column:completion_shop_code;type:text"`
	CertificateNumber   *string `gorm:"column:certificate_number;type:text"`
	Notes               *string `gorm:"column:notes;type:text"`
	CreatedAt           string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt           string  `gorm:"column:updated_at;type:text;not null"`
}

func (Qualification) TableName() string {
	return "qualifications"
}
