package httpapi

import (
	"time"

	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
)

type qualificationTypeResponse struct {
	ID                    uint64 `json:"id"`
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	RegulatoryBody        string `json:"regulatory_body"`
	DefaultIntervalMonths *int   `json:"default_interval_months"`
	IsActive              bool   `json:"is_active"`
}

type qualificationResponse struct {
	ID                  uint64    `json:"id"`
	CarID               string    `json:"car_id"`
	QualificationTypeID uint64    `json:"qualification_type_id"`
	TypeCode            string    `json:"type_code,omitempty"`
	TypeName            string    `json:"type_name,omitempty"`
	IntervalMonths      *int      `json:"interval_months"`
	LastCompletedDate   *string   `json:"last_completed_date"`
	NextDueDate         *string   `json:"next_due_date"`
	ExpiryDate          *string   `json:"expiry_date"`
	Status              string    `json:"status"`
	IsExempt            bool      `json:"is_exempt"`
	ExemptReason        string    `json:"exempt_reason,omitempty"`
	CompletedBy         string    `json:"completed_by,omitempty"`
	CompletionShopCode  string    `json:"completion_shop_code,omitempty"`
	CertificateNumber   string    `json:"certificate_number,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type alertResponse struct {
	ID              uint64     `json:"id"`
	QualificationID uint64     `json:"qualification_id"`
	CarID           string     `json:"car_id"`
	TypeCode        string     `json:"type_code,omitempty"`
	AlertType       string     `json:"alert_type"`
	DaysUntilDue    int        `json:"days_until_due"`
	NextDueDate     *string    `json:"next_due_date"`
	IsAcknowledged  bool       `json:"is_acknowledged"`
	AcknowledgedBy  string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt  *time.Time `json:"acknowledged_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type historyResponse struct {
	ID        uint64         `json:"id"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actor_id"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

type priorityResponse struct {
	CarID               string  `json:"car_id"`
	RecommendedPriority int     `json:"recommended_priority"`
	PriorityLabel       string  `json:"priority_label"`
	Reason              string  `json:"reason"`
	OverdueCount        int     `json:"overdue_count"`
	DueCount            int     `json:"due_count"`
	DueSoonCount        int     `json:"due_soon_count"`
	EarliestDue         *string `json:"earliest_due"`
}

type listResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type createQualificationRequest struct {
	CarID               string  `json:"car_id" validate:"required,max=64"`
	QualificationTypeID uint64  `json:"qualification_type_id" validate:"required_without=TypeCode"`
	TypeCode            string  `json:"type_code" validate:"required_without=QualificationTypeID,max=64"`
	IntervalMonths      *int    `json:"interval_months" validate:"omitempty,min=1,max=600"`
	LastCompletedDate   *string `json:"last_completed_date"`
	NextDueDate         *string `json:"next_due_date"`
	IsExempt            bool    `json:"is_exempt"`
	ExemptReason        string  `json:"exempt_reason" validate:"max=500"`
	Notes               string  `json:"notes" validate:"max=2000"`
}

type completeQualificationRequest struct {
	CompletedDate      string     `json:"completed_date"`
	CompletedBy        string     `json:"completed_by" validate:"max=128"`
	CompletionShopCode string     `json:"completion_shop_code" validate:"max=64"`
	CertificateNumber  string     `json:"certificate_number" validate:"max=128"`
	Notes              *string    `json:"notes" validate:"omitempty,max=2000"`
	ExpectedUpdatedAt  *time.Time `json:"expected_updated_at"`
}

type bulkUpdateRequest struct {
	IDs          []uint64 `json:"ids"`
	Status       *string  `json:"status"`
	IsExempt     *bool    `json:"is_exempt"`
	ExemptReason *string  `json:"exempt_reason" validate:"omitempty,max=500"`
	Notes        *string  `json:"notes" validate:"omitempty,max=2000"`
}

type recalculateRequest struct {
	Now string `json:"now"`
}

type listAlertsQuery struct {
	Acknowledged    string `validate:"omitempty,oneof=true false"`
	AlertType       string `validate:"omitempty,oneof=warning_90 warning_30 overdue"`
	CarID           string `validate:"max=64"`
	QualificationID uint64
}

func toQualificationTypeResponse(qt domain.QualificationType) qualificationTypeResponse {
	return qualificationTypeResponse{
		ID:                    qt.ID,
		Code:                  qt.Code,
		Name:                  qt.Name,
		RegulatoryBody:        qt.RegulatoryBody,
		DefaultIntervalMonths: qt.DefaultIntervalMonths,
		IsActive:              qt.IsActive,
	}
}

func toQualificationResponse(q domain.Qualification) qualificationResponse {
	return qualificationResponse{
		ID:                  q.ID,
		CarID:               q.CarID,
		QualificationTypeID: q.QualificationTypeID,
		TypeCode:            q.TypeCode,
		TypeName:            q.TypeName,
		IntervalMonths:      q.IntervalMonths,
		LastCompletedDate:   dateString(q.LastCompletedDate),
		NextDueDate:         dateString(q.NextDueDate),
		ExpiryDate:          dateString(q.ExpiryDate),
		Status:              string(q.Status),
		IsExempt:            q.IsExempt,
		ExemptReason:        q.ExemptReason,
		CompletedBy:         q.CompletedBy,
		CompletionShopCode:  q.CompletionShopCode,
		CertificateNumber:   q.CertificateNumber,
		Notes:               q.Notes,
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
	}
}

func toAlertResponse(a domain.Alert) alertResponse {
	return alertResponse{
		ID:              a.ID,
		QualificationID: a.QualificationID,
		CarID:           a.CarID,
		TypeCode:        a.TypeCode,
		AlertType:       string(a.AlertType),
		DaysUntilDue:    a.DaysUntilDue,
		NextDueDate:     dateString(a.NextDueDate),
		IsAcknowledged:  a.IsAcknowledged,
		AcknowledgedBy:  a.AcknowledgedBy,
		AcknowledgedAt:  a.AcknowledgedAt,
		CreatedAt:       a.CreatedAt,
	}
}

func toHistoryResponse(e domain.HistoryEvent) historyResponse {
	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return historyResponse{
		ID:        e.ID,
		Action:    string(e.Action),
		ActorID:   e.ActorID,
		Payload:   payload,
		CreatedAt: e.CreatedAt,
	}
}

func toPriorityResponse(p domain.PriorityResult) priorityResponse {
	return priorityResponse{
		CarID:               p.CarID,
		RecommendedPriority: p.RecommendedPriority,
		PriorityLabel:       p.PriorityLabel,
		Reason:              p.Reason,
		OverdueCount:        p.OverdueCount,
		DueCount:            p.DueCount,
		DueSoonCount:        p.DueSoonCount,
		EarliestDue:         dateString(p.EarliestDue),
	}
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := domain.FormatDate(t)
	return &formatted
}

func mapSlice[T any, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
