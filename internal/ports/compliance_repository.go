package ports

import (
	"context"
	"time"

	"github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
)

type QualificationFilter struct {
	CarID    string
	Status   compliance.Status
	TypeID   uint64
	TypeCode string
}

type AlertFilter struct {
	Acknowledged    *bool
	AlertType       compliance.AlertType
	CarID           string
	QualificationID uint64
}

// Page is a limit/offset window. Limit <= 0 means no limit.
type Page struct {
	Limit  int
	Offset int
}

type QualificationCompletion struct {
	ID                 uint64
	LastCompletedDate  time.Time
	NextDueDate        time.Time
	ExpiryDate         time.Time
	Status             compliance.Status
	CompletedBy        string
	CompletionShopCode string
	CertificateNumber  string
	Notes              *string
	UpdatedAt          time.Time
}

// StatusChange is a conditional status write: it only lands when the row
// still carries FromStatus and PrevUpdatedAt.
type StatusChange struct {
	ID            uint64
	FromStatus    compliance.Status
	ToStatus      compliance.Status
	PrevUpdatedAt time.Time
	UpdatedAt     time.Time
}

type QualificationTypeRepository interface {
	ListQualificationTypes(ctx context.Context, includeInactive bool) ([]compliance.QualificationType, error)
	GetQualificationType(ctx context.Context, id uint64) (compliance.QualificationType, error)
	GetQualificationTypeByCode(ctx context.Context, code string) (compliance.QualificationType, error)
	UpsertQualificationType(ctx context.Context, qt compliance.QualificationType) (compliance.QualificationType, error)
}

type QualificationRepository interface {
	ListQualifications(ctx context.Context, filter QualificationFilter, page Page) ([]compliance.Qualification, error)
	CountQualifications(ctx context.Context, filter QualificationFilter) (int64, error)
	GetQualification(ctx context.Context, id uint64) (compliance.Qualification, error)
	ListQualificationsByIDs(ctx context.Context, ids []uint64) ([]compliance.Qualification, error)
	QualificationExists(ctx context.Context, carID string, typeID uint64) (bool, error)
	InsertQualification(ctx context.Context, q compliance.Qualification) (compliance.Qualification, error)
	SaveCompletion(ctx context.Context, input QualificationCompletion) error
	ExistingQualificationIDs(ctx context.Context, ids []uint64) ([]uint64, error)
	ApplyBulkPatch(ctx context.Context, ids []uint64, patch compliance.BulkPatch, updatedAt time.Time) (int64, error)
	SetStatus(ctx context.Context, id uint64, status compliance.Status, updatedAt time.Time) error
	ScanNonExempt(ctx context.Context, afterID uint64, limit int) ([]compliance.Qualification, error)
	CompareAndSetStatus(ctx context.Context, change StatusChange) (bool, error)
}

type HistoryRepository interface {
	AppendHistory(ctx context.Context, event compliance.HistoryEvent) error
	ListHistory(ctx context.Context, entityType string, entityID uint64) ([]compliance.HistoryEvent, error)
}

type AlertRepository interface {
	ListAlerts(ctx context.Context, filter AlertFilter, page Page) ([]compliance.Alert, error)
	CountAlerts(ctx context.Context, filter AlertFilter) (int64, error)
	AcknowledgeAlert(ctx context.Context, id uint64, actorID string, at time.Time) (bool, error)
	InsertAlert(ctx context.Context, alert compliance.Alert) (compliance.Alert, error)
}

type StatsRepository interface {
	// ReadStatsSnapshot returns found=false when the aggregate yields no row.
	ReadStatsSnapshot(ctx context.Context) (stats compliance.FleetStats, found bool, err error)
}

type ComplianceRepository interface {
	QualificationTypeRepository
	QualificationRepository
	HistoryRepository
	AlertRepository
	StatsRepository
}
