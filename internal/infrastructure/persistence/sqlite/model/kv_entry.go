package model

// KVEntry backs the database cache adapter. ExpiresAt is empty for entries without TTL.
type KVEntry struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	ExpiresAt string `gorm:"column:expires_at;type:text;not null;default:''"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
