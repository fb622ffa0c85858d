package ports

import (
	"context"
	"time"
)

// StatusChangedEvent is emitted after a recalculation moves a record to a new status.
type StatusChangedEvent struct {
	QualificationID uint64    `json:"qualification_id"`
	CarID           string    `json:"car_id"`
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	NextDueDate     string    `json:"next_due_date,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// EventPublisher fans status changes out to downstream consumers.
// Delivery is best-effort; callers log and continue on error.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event StatusChangedEvent) error
	Close() error
}
