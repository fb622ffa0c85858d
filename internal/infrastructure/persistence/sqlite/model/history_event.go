package model

type HistoryEvent struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	EntityType  string `gorm:"column:entity_type;type:text;not null;index:ix_history_entity,priority:1"`
	EntityID    uint64 `gorm:"column:entity_id;not null;index:ix_history_entity,priority:2"`
	Action      string `gorm:"column:action;type:text;not null"`
	ActorID     string `gorm:"column:actor_id;type:text;not null"`
	PayloadJSON string `gorm:"column:payload_json;type:text;not null"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (HistoryEvent) TableName() string {
	return "history_events"
}
