package model

type Alert struct {
	ID              uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	QualificationID uint64  `gorm:"column:qualification_id;not null;index"`
	AlertType       string  `gorm:"column:alert_type;type:text;not null;index"`
	DaysUntilDue    int     `gorm:"column:days_until_due;not null"`
	NextDueDate     *string `gorm:"column:next_due_date;type:text"`
	IsAcknowledged  bool    `gorm:"column:is_acknowledged;not null;index"`
	AcknowledgedBy  *string `gorm:"column:acknowledged_by;type:text"`
	AcknowledgedAt  *string `gorm:"column:acknowledged_at;type:text"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
}

func (Alert) TableName() string {
	return "qualification_alerts"
}
