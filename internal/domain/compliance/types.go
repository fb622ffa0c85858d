package compliance

import "time"

type Status string

const (
	StatusUnknown Status = "unknown"
	StatusCurrent Status = "current"
	StatusDueSoon Status = "due_soon"
	StatusDue     Status = "due"
	StatusOverdue Status = "overdue"
	StatusExempt  Status = "exempt"
)

var allStatuses = []Status{StatusUnknown, StatusCurrent, StatusDueSoon, StatusDue, StatusOverdue, StatusExempt}

func ParseStatus(raw string) (Status, bool) {
	for _, status := range allStatuses {
		if string(status) == raw {
			return status, true
		}
	}
	return "", false
}

type AlertType string

const (
	AlertWarning90 AlertType = "warning_90"
	AlertWarning30 AlertType = "warning_30"
	AlertOverdue   AlertType = "overdue"
)

type HistoryAction string

const (
	ActionCreated     HistoryAction = "created"
	ActionCompleted   HistoryAction = "completed"
	ActionBulkUpdated HistoryAction = "bulk_updated"
)

const EntityQualification = "qualification"

// QualificationType is reference data maintained outside this engine.
type QualificationType struct {
	ID                    uint64
	Code                  string
	Name                  string
	RegulatoryBody        string
	DefaultIntervalMonths *int
	IsActive              bool
}

// Qualification is one tracked requirement for one car.
// Status is a cache of DeriveStatus and is rewritten by every mutation path.
type Qualification struct {
	ID                  uint64
	CarID               string
	QualificationTypeID uint64
	TypeCode            string
	TypeName            string
	IntervalMonths      *int
	LastCompletedDate   *time.Time
	NextDueDate         *time.Time
	ExpiryDate          *time.Time
	Status              Status
	IsExempt            bool
	ExemptReason        string
	CompletedBy         string
	CompletionShopCode  string
	CertificateNumber   string
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Alert is generated externally; only acknowledgment fields change here.
type Alert struct {
	ID              uint64
	QualificationID uint64
	CarID           string
	TypeCode        string
	AlertType       AlertType
	DaysUntilDue    int
	NextDueDate     *time.Time
	IsAcknowledged  bool
	AcknowledgedBy  string
	AcknowledgedAt  *time.Time
	CreatedAt       time.Time
}

type HistoryEvent struct {
	ID         uint64
	EntityType string
	EntityID   uint64
	Action     HistoryAction
	ActorID    string
	Payload    map[string]any
	CreatedAt  time.Time
}

type FleetStats struct {
	TotalQualifications  int64 `json:"total_qualifications"`
	Current              int64 `json:"current"`
	DueSoon              int64 `json:"due_soon"`
	Due                  int64 `json:"due"`
	Overdue              int64 `json:"overdue"`
	Exempt               int64 `json:"exempt"`
	Unknown              int64 `json:"unknown"`
	OverdueCars          int64 `json:"overdue_cars"`
	DueCars              int64 `json:"due_cars"`
	UnacknowledgedAlerts int64 `json:"unacknowledged_alerts"`
}

type PriorityCounts struct {
	Overdue int
	Due     int
	DueSoon int
}

type PriorityResult struct {
	CarID               string
	RecommendedPriority int
	PriorityLabel       string
	Reason              string
	OverdueCount        int
	DueCount            int
	DueSoonCount        int
	EarliestDue         *time.Time
}
