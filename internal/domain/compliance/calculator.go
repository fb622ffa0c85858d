package compliance

import (
	"fmt"
	"time"
)

const (
	DefaultIntervalMonths = 120

	DueWithinDays     = 30
	DueSoonWithinDays = 90
)

const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// DeriveStatus maps exemption and next due date to a lifecycle status.
// now is passed in so one recalculation pass judges every record against the same day.
func DeriveStatus(isExempt bool, nextDue *time.Time, now time.Time) Status {
	if isExempt {
		return StatusExempt
	}
	if nextDue == nil {
		return StatusUnknown
	}

	days := DaysBetween(now, *nextDue)
	switch {
	case days < 0:
		return StatusOverdue
	case days <= DueWithinDays:
		return StatusDue
	case days <= DueSoonWithinDays:
		return StatusDueSoon
	default:
		return StatusCurrent
	}
}

// Derive is DeriveStatus over a record.
func (q Qualification) Derive(now time.Time) Status {
	return DeriveStatus(q.IsExempt, q.NextDueDate, now)
}

// EffectiveInterval resolves the record interval, then the type default, then DefaultIntervalMonths.
func EffectiveInterval(recordInterval *int, typeDefault *int) int {
	if recordInterval != nil && *recordInterval > 0 {
		return *recordInterval
	}
	if typeDefault != nil && *typeDefault > 0 {
		return *typeDefault
	}
	return DefaultIntervalMonths
}

// ComputeNextDue returns the next due date (completed + interval months, day
// clamped to month end) and the expiry date (Dec 31 of the next due year).
func ComputeNextDue(completed time.Time, intervalMonths *int) (time.Time, time.Time) {
	interval := EffectiveInterval(intervalMonths, nil)
	nextDue := AddMonths(DateOnly(completed), interval)
	return nextDue, ExpiryFor(nextDue)
}

func ExpiryFor(nextDue time.Time) time.Time {
	return time.Date(nextDue.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}

// ScorePriority ranks a car for shop assignment from its status counts.
func ScorePriority(counts PriorityCounts) (int, string, string) {
	switch {
	case counts.Overdue > 0:
		return PriorityCritical, "Critical", fmt.Sprintf("%d overdue %s", counts.Overdue, plural(counts.Overdue))
	case counts.Due > 0:
		return PriorityHigh, "High", fmt.Sprintf("%d %s due within 30 days", counts.Due, plural(counts.Due))
	case counts.DueSoon > 0:
		return PriorityMedium, "Medium", fmt.Sprintf("%d %s due within 90 days", counts.DueSoon, plural(counts.DueSoon))
	default:
		return PriorityLow, "Low", "No urgent qualification needs"
	}
}

func plural(n int) string {
	if n == 1 {
		return "qualification"
	}
	return "qualifications"
}

// BuildPriority tallies non-exempt records of one car and scores them.
func BuildPriority(carID string, records []Qualification, now time.Time) PriorityResult {
	var counts PriorityCounts
	var earliest *time.Time
	for _, record := range records {
		if record.IsExempt {
			continue
		}
		switch record.Derive(now) {
		case StatusOverdue:
			counts.Overdue++
		case StatusDue:
			counts.Due++
		case StatusDueSoon:
			counts.DueSoon++
		}
		if record.NextDueDate != nil && (earliest == nil || record.NextDueDate.Before(*earliest)) {
			due := *record.NextDueDate
			earliest = &due
		}
	}

	priority, label, reason := ScorePriority(counts)
	return PriorityResult{
		CarID:               carID,
		RecommendedPriority: priority,
		PriorityLabel:       label,
		Reason:              reason,
		OverdueCount:        counts.Overdue,
		DueCount:            counts.Due,
		DueSoonCount:        counts.DueSoon,
		EarliestDue:         earliest,
	}
}
