package compliance

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := ParseDate("test_date", raw)
	if err != nil {
		t.Fatalf("ParseDate(%q) error = %v", raw, err)
	}
	return parsed
}

func intPtr(v int) *int { return &v }

func TestDeriveStatusThresholds(t *testing.T) {
	now := mustDate(t, "2026-10-15")

	testCases := []struct {
		name   string
		exempt bool
		due    string
		want   Status
	}{
		{name: "exempt wins over dates", exempt: true, due: "2020-01-01", want: StatusExempt},
		{name: "no due date", want: StatusUnknown},
		{name: "yesterday", due: "2026-10-14", want: StatusOverdue},
		{name: "today", due: "2026-10-15", want: StatusDue},
		{name: "30 days", due: "2026-11-14", want: StatusDue},
		{name: "31 days", due: "2026-11-15", want: StatusDueSoon},
		{name: "90 days", due: "2027-01-13", want: StatusDueSoon},
		{name: "91 days", due: "2027-01-14", want: StatusCurrent},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var due *time.Time
			if testCase.due != "" {
				parsed := mustDate(t, testCase.due)
				due = &parsed
			}
			if got := DeriveStatus(testCase.exempt, due, now); got != testCase.want {
				t.Fatalf("DeriveStatus() = %q, want %q", got, testCase.want)
			}
		})
	}
}

func TestDeriveStatusIgnoresClockTime(t *testing.T) {
	due := mustDate(t, "2026-10-15")
	lateEvening := time.Date(2026, time.October, 15, 23, 59, 0, 0, time.UTC)
	if got := DeriveStatus(false, &due, lateEvening); got != StatusDue {
		t.Fatalf("DeriveStatus() = %q, want due", got)
	}
}

func TestComputeNextDue(t *testing.T) {
	testCases := []struct {
		name       string
		completed  string
		interval   *int
		wantDue    string
		wantExpiry string
	}{
		{name: "ten years", completed: "2026-02-01", interval: intPtr(120), wantDue: "2036-02-01", wantExpiry: "2036-12-31"},
		{name: "nil interval defaults to 120", completed: "2026-02-01", wantDue: "2036-02-01", wantExpiry: "2036-12-31"},
		{name: "clamp to month end", completed: "2026-01-31", interval: intPtr(1), wantDue: "2026-02-28", wantExpiry: "2026-12-31"},
		{name: "leap day clamps", completed: "2024-02-29", interval: intPtr(12), wantDue: "2025-02-28", wantExpiry: "2025-12-31"},
		{name: "year rollover", completed: "2026-11-30", interval: intPtr(3), wantDue: "2027-02-28", wantExpiry: "2027-12-31"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			due, expiry := ComputeNextDue(mustDate(t, testCase.completed), testCase.interval)
			if got := due.Format(DateLayout); got != testCase.wantDue {
				t.Fatalf("next due = %s, want %s", got, testCase.wantDue)
			}
			if got := expiry.Format(DateLayout); got != testCase.wantExpiry {
				t.Fatalf("expiry = %s, want %s", got, testCase.wantExpiry)
			}
		})
	}
}

func TestEffectiveInterval(t *testing.T) {
	if got := EffectiveInterval(intPtr(12), intPtr(60)); got != 12 {
		t.Fatalf("EffectiveInterval(record) = %d, want 12", got)
	}
	if got := EffectiveInterval(nil, intPtr(60)); got != 60 {
		t.Fatalf("EffectiveInterval(type default) = %d, want 60", got)
	}
	if got := EffectiveInterval(intPtr(0), nil); got != DefaultIntervalMonths {
		t.Fatalf("EffectiveInterval(fallback) = %d, want %d", got, DefaultIntervalMonths)
	}
}

func TestScorePriority(t *testing.T) {
	testCases := []struct {
		name       string
		counts     PriorityCounts
		want       int
		wantReason string
	}{
		{name: "overdue", counts: PriorityCounts{Overdue: 2, Due: 1}, want: 1, wantReason: "overdue"},
		{name: "due", counts: PriorityCounts{Due: 1, DueSoon: 2}, want: 2, wantReason: "30 days"},
		{name: "due soon", counts: PriorityCounts{DueSoon: 1}, want: 3, wantReason: "90 days"},
		{name: "nothing", counts: PriorityCounts{}, want: 4, wantReason: "No urgent qualification needs"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			priority, _, reason := ScorePriority(testCase.counts)
			if priority != testCase.want {
				t.Fatalf("priority = %d, want %d", priority, testCase.want)
			}
			if !strings.Contains(reason, testCase.wantReason) {
				t.Fatalf("reason = %q, want it to mention %q", reason, testCase.wantReason)
			}
		})
	}

	if _, _, reason := ScorePriority(PriorityCounts{}); reason != "No urgent qualification needs" {
		t.Fatalf("low reason = %q", reason)
	}
}

func TestBuildPrioritySkipsExemptAndTracksEarliest(t *testing.T) {
	now := mustDate(t, "2026-10-15")
	overdue := mustDate(t, "2026-09-01")
	soon := mustDate(t, "2026-12-01")
	older := mustDate(t, "2020-01-01")

	result := BuildPriority("GATX 1001", []Qualification{
		{NextDueDate: &soon},
		{NextDueDate: &overdue},
		{NextDueDate: &older, IsExempt: true},
		{},
	}, now)

	if result.RecommendedPriority != PriorityCritical || result.OverdueCount != 1 || result.DueSoonCount != 1 {
		t.Fatalf("BuildPriority() = %+v", result)
	}
	if result.EarliestDue == nil || !result.EarliestDue.Equal(overdue) {
		t.Fatalf("EarliestDue = %v, want %v", result.EarliestDue, overdue)
	}
}

func TestParseDateErrors(t *testing.T) {
	_, err := ParseDate("completed_date", "not-a-date")
	var dateErr *InvalidDateError
	if !errors.As(err, &dateErr) {
		t.Fatalf("ParseDate() error = %v, want InvalidDateError", err)
	}
	if err.Error() != "Invalid completed_date" {
		t.Fatalf("error = %q", err.Error())
	}

	parsed, err := ParseDate("completed_date", "2026-02-01T18:30:00-05:00")
	if err != nil {
		t.Fatalf("ParseDate(rfc3339) error = %v", err)
	}
	if parsed.Format(DateLayout) != "2026-02-01" {
		t.Fatalf("ParseDate(rfc3339) = %s", parsed.Format(DateLayout))
	}

	empty := "  "
	if got, err := ParseOptionalDate("next_due_date", &empty); err != nil || got != nil {
		t.Fatalf("ParseOptionalDate(blank) = %v, %v", got, err)
	}
}

func TestBulkPatchNormalize(t *testing.T) {
	exempt := StatusExempt
	due := StatusDue
	reason := " retired from service "
	no := false

	patch, err := BulkPatch{Status: &exempt, ExemptReason: &reason}.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if patch.IsExempt == nil || !*patch.IsExempt || *patch.ExemptReason != "retired from service" {
		t.Fatalf("Normalize() = %+v", patch)
	}

	if _, err := (BulkPatch{Status: &due}).Normalize(); !errors.Is(err, ErrDerivedStatusNotAssignable) {
		t.Fatalf("Normalize(due) error = %v", err)
	}
	if _, err := (BulkPatch{Status: &exempt, IsExempt: &no}).Normalize(); !errors.Is(err, ErrDerivedStatusNotAssignable) {
		t.Fatalf("Normalize(contradiction) error = %v", err)
	}
	if _, err := (BulkPatch{Status: &exempt}).Normalize(); !errors.Is(err, ErrExemptReasonRequired) {
		t.Fatalf("Normalize(no reason) error = %v", err)
	}
	if !errors.Is(ErrExemptReasonRequired, ErrInvalidInput) {
		t.Fatalf("ErrExemptReasonRequired should wrap ErrInvalidInput")
	}
}
