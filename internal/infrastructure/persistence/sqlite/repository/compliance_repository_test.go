package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/schema"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

func setupComplianceRepository(t *testing.T) *ComplianceRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "compliance.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := schema.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewComplianceRepository(db)
}

func seedType(t *testing.T, repo *ComplianceRepository, code string, interval *int) compliance.QualificationType {
	t.Helper()
	qt, err := repo.UpsertQualificationType(context.Background(), compliance.QualificationType{
		Code:                  code,
		Name:                  code + " test",
		RegulatoryBody:        "FRA",
		DefaultIntervalMonths: interval,
		IsActive:              true,
	})
	if err != nil {
		t.Fatalf("UpsertQualificationType(%s) error = %v", code, err)
	}
	return qt
}

func date(t *testing.T, raw string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(compliance.DateLayout, raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return &parsed
}

func insertRecord(t *testing.T, repo *ComplianceRepository, carID string, typeID uint64, status compliance.Status, nextDue *time.Time) compliance.Qualification {
	t.Helper()
	now := time.Now().UTC()
	record := compliance.Qualification{
		CarID:               carID,
		QualificationTypeID: typeID,
		NextDueDate:         nextDue,
		Status:              status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if status == compliance.StatusExempt {
		record.IsExempt = true
		record.ExemptReason = "retired"
	}
	record, err := repo.InsertQualification(context.Background(), record)
	if err != nil {
		t.Fatalf("InsertQualification(%s) error = %v", carID, err)
	}
	return record
}

func TestUpsertQualificationTypeByCode(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	interval := 120

	first := seedType(t, repo, "TANK_TEST", &interval)
	updated, err := repo.UpsertQualificationType(ctx, compliance.QualificationType{
		Code:     "TANK_TEST",
		Name:     "Tank Qualification",
		IsActive: false,
	})
	if err != nil {
		t.Fatalf("UpsertQualificationType(update) error = %v", err)
	}
	if updated.ID != first.ID || updated.Name != "Tank Qualification" || updated.IsActive {
		t.Fatalf("UpsertQualificationType(update) = %+v", updated)
	}

	active, err := repo.ListQualificationTypes(ctx, false)
	if err != nil {
		t.Fatalf("ListQualificationTypes() error = %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("ListQualificationTypes(active) len = %d, want 0", len(active))
	}
	all, err := repo.ListQualificationTypes(ctx, true)
	if err != nil {
		t.Fatalf("ListQualificationTypes(all) error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListQualificationTypes(all) len = %d, want 1", len(all))
	}

	if _, err := repo.GetQualificationType(ctx, 9999); !errors.Is(err, compliance.ErrQualificationTypeNotFound) {
		t.Fatalf("GetQualificationType(unknown) error = %v", err)
	}
}

func TestInsertQualificationRejectsDuplicateCarType(t *testing.T) {
	repo := setupComplianceRepository(t)
	qt := seedType(t, repo, "SRV", nil)

	record := insertRecord(t, repo, "UTLX 100", qt.ID, compliance.StatusUnknown, nil)
	if record.TypeCode != "SRV" || record.Status != compliance.StatusUnknown {
		t.Fatalf("InsertQualification() = %+v", record)
	}

	_, err := repo.InsertQualification(context.Background(), compliance.Qualification{
		CarID:               "UTLX 100",
		QualificationTypeID: qt.ID,
		Status:              compliance.StatusUnknown,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	})
	if !errors.Is(err, compliance.ErrDuplicateQualification) {
		t.Fatalf("InsertQualification(duplicate) error = %v", err)
	}
}

func TestListAndCountQualificationsWithFilters(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	tank := seedType(t, repo, "TANK", nil)
	valve := seedType(t, repo, "VALVE", nil)

	insertRecord(t, repo, "A 1", tank.ID, compliance.StatusOverdue, date(t, "2026-01-01"))
	insertRecord(t, repo, "A 1", valve.ID, compliance.StatusCurrent, date(t, "2030-01-01"))
	insertRecord(t, repo, "B 2", tank.ID, compliance.StatusOverdue, date(t, "2025-06-01"))
	insertRecord(t, repo, "C 3", tank.ID, compliance.StatusUnknown, nil)

	overdue, err := repo.ListQualifications(ctx, ports.QualificationFilter{Status: compliance.StatusOverdue}, ports.Page{Limit: 1})
	if err != nil {
		t.Fatalf("ListQualifications() error = %v", err)
	}
	if len(overdue) != 1 || overdue[0].CarID != "B 2" {
		t.Fatalf("ListQualifications(overdue, limit 1) = %+v", overdue)
	}

	total, err := repo.CountQualifications(ctx, ports.QualificationFilter{Status: compliance.StatusOverdue})
	if err != nil {
		t.Fatalf("CountQualifications() error = %v", err)
	}
	if total != 2 {
		t.Fatalf("CountQualifications(overdue) = %d, want 2", total)
	}

	byCode, err := repo.CountQualifications(ctx, ports.QualificationFilter{TypeCode: "TANK"})
	if err != nil {
		t.Fatalf("CountQualifications(type) error = %v", err)
	}
	if byCode != 3 {
		t.Fatalf("CountQualifications(TANK) = %d, want 3", byCode)
	}

	car, err := repo.ListQualifications(ctx, ports.QualificationFilter{CarID: "A 1"}, ports.Page{})
	if err != nil {
		t.Fatalf("ListQualifications(car) error = %v", err)
	}
	if len(car) != 2 || car[0].TypeCode != "TANK" {
		t.Fatalf("ListQualifications(car) = %+v", car)
	}

	all, err := repo.ListQualifications(ctx, ports.QualificationFilter{}, ports.Page{})
	if err != nil {
		t.Fatalf("ListQualifications(all) error = %v", err)
	}
	if last := all[len(all)-1]; last.NextDueDate != nil {
		t.Fatalf("records without next due should sort last, got %+v", last)
	}
}

func TestApplyBulkPatchAndConditionalStatus(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	qt := seedType(t, repo, "TANK", nil)
	first := insertRecord(t, repo, "A 1", qt.ID, compliance.StatusDue, date(t, "2026-10-20"))
	second := insertRecord(t, repo, "B 2", qt.ID, compliance.StatusCurrent, date(t, "2031-01-01"))

	ids, err := repo.ExistingQualificationIDs(ctx, []uint64{first.ID, second.ID, 4242})
	if err != nil {
		t.Fatalf("ExistingQualificationIDs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ExistingQualificationIDs() = %v", ids)
	}

	exempt := true
	reason := "leased out of service"
	affected, err := repo.ApplyBulkPatch(ctx, ids, compliance.BulkPatch{IsExempt: &exempt, ExemptReason: &reason}, time.Now())
	if err != nil {
		t.Fatalf("ApplyBulkPatch() error = %v", err)
	}
	if affected != 2 {
		t.Fatalf("ApplyBulkPatch() affected = %d, want 2", affected)
	}

	records, err := repo.ListQualificationsByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("ListQualificationsByIDs() error = %v", err)
	}
	for _, record := range records {
		if !record.IsExempt || record.Status != compliance.StatusExempt || record.ExemptReason != reason {
			t.Fatalf("patched record = %+v", record)
		}
	}

	scanned, err := repo.ScanNonExempt(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ScanNonExempt() error = %v", err)
	}
	if len(scanned) != 0 {
		t.Fatalf("ScanNonExempt() returned exempt records: %+v", scanned)
	}

	third := insertRecord(t, repo, "C 3", qt.ID, compliance.StatusCurrent, date(t, "2026-10-01"))
	stale := ports.StatusChange{
		ID:            third.ID,
		FromStatus:    compliance.StatusCurrent,
		ToStatus:      compliance.StatusOverdue,
		PrevUpdatedAt: third.UpdatedAt.Add(-time.Second),
		UpdatedAt:     time.Now(),
	}
	if ok, err := repo.CompareAndSetStatus(ctx, stale); err != nil || ok {
		t.Fatalf("CompareAndSetStatus(stale) = %v, %v", ok, err)
	}

	stale.PrevUpdatedAt = third.UpdatedAt
	if ok, err := repo.CompareAndSetStatus(ctx, stale); err != nil || !ok {
		t.Fatalf("CompareAndSetStatus(fresh) = %v, %v", ok, err)
	}
}

func TestAlertsFilterCountAndAcknowledge(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	qt := seedType(t, repo, "TANK", nil)
	record := insertRecord(t, repo, "A 1", qt.ID, compliance.StatusDue, date(t, "2026-10-20"))
	other := insertRecord(t, repo, "B 2", qt.ID, compliance.StatusOverdue, date(t, "2026-01-20"))

	pending, err := repo.InsertAlert(ctx, compliance.Alert{QualificationID: record.ID, AlertType: compliance.AlertWarning30, DaysUntilDue: 5})
	if err != nil {
		t.Fatalf("InsertAlert() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := repo.InsertAlert(ctx, compliance.Alert{QualificationID: other.ID, AlertType: compliance.AlertOverdue, DaysUntilDue: -10}); err != nil {
			t.Fatalf("InsertAlert(other) error = %v", err)
		}
	}

	page, err := repo.ListAlerts(ctx, ports.AlertFilter{CarID: "B 2"}, ports.Page{Limit: 2})
	if err != nil {
		t.Fatalf("ListAlerts() error = %v", err)
	}
	total, err := repo.CountAlerts(ctx, ports.AlertFilter{CarID: "B 2"})
	if err != nil {
		t.Fatalf("CountAlerts() error = %v", err)
	}
	if len(page) != 2 || total != 3 {
		t.Fatalf("ListAlerts() len = %d total = %d, want 2 of 3", len(page), total)
	}
	if page[0].CarID != "B 2" || page[0].TypeCode != "TANK" {
		t.Fatalf("ListAlerts() joined fields = %+v", page[0])
	}

	ok, err := repo.AcknowledgeAlert(ctx, pending.ID, "ops-1", time.Now())
	if err != nil || !ok {
		t.Fatalf("AcknowledgeAlert() = %v, %v", ok, err)
	}
	ok, err = repo.AcknowledgeAlert(ctx, pending.ID, "ops-2", time.Now())
	if err != nil || ok {
		t.Fatalf("AcknowledgeAlert(again) = %v, %v", ok, err)
	}

	acked := true
	items, err := repo.ListAlerts(ctx, ports.AlertFilter{Acknowledged: &acked}, ports.Page{})
	if err != nil {
		t.Fatalf("ListAlerts(acked) error = %v", err)
	}
	if len(items) != 1 || items[0].AcknowledgedBy != "ops-1" || items[0].AcknowledgedAt == nil {
		t.Fatalf("ListAlerts(acked) = %+v", items)
	}
}

func TestReadStatsSnapshot(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()

	_, found, err := repo.ReadStatsSnapshot(ctx)
	if err != nil {
		t.Fatalf("ReadStatsSnapshot(empty) error = %v", err)
	}
	if found {
		t.Fatalf("ReadStatsSnapshot(empty) found = true, want false")
	}

	tank := seedType(t, repo, "TANK", nil)
	valve := seedType(t, repo, "VALVE", nil)
	overdue := insertRecord(t, repo, "A 1", tank.ID, compliance.StatusOverdue, date(t, "2026-01-01"))
	insertRecord(t, repo, "A 1", valve.ID, compliance.StatusOverdue, date(t, "2026-02-01"))
	insertRecord(t, repo, "B 2", tank.ID, compliance.StatusDue, date(t, "2026-10-20"))
	insertRecord(t, repo, "C 3", tank.ID, compliance.StatusExempt, nil)
	if _, err := repo.InsertAlert(ctx, compliance.Alert{QualificationID: overdue.ID, AlertType: compliance.AlertOverdue}); err != nil {
		t.Fatalf("InsertAlert() error = %v", err)
	}

	stats, found, err := repo.ReadStatsSnapshot(ctx)
	if err != nil || !found {
		t.Fatalf("ReadStatsSnapshot() = %v, %v", found, err)
	}
	want := compliance.FleetStats{
		TotalQualifications:  4,
		Due:                  1,
		Overdue:              2,
		Exempt:               1,
		OverdueCars:          1,
		DueCars:              1,
		UnacknowledgedAlerts: 1,
	}
	if stats != want {
		t.Fatalf("ReadStatsSnapshot() = %+v, want %+v", stats, want)
	}
}

func TestHistoryAppendAndList(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()

	for _, action := range []compliance.HistoryAction{compliance.ActionCreated, compliance.ActionCompleted} {
		if err := repo.AppendHistory(ctx, compliance.HistoryEvent{
			EntityType: compliance.EntityQualification,
			EntityID:   7,
			Action:     action,
			ActorID:    "inspector",
			Payload:    map[string]any{"next_due_date": "2036-02-01"},
			CreatedAt:  time.Now(),
		}); err != nil {
			t.Fatalf("AppendHistory(%s) error = %v", action, err)
		}
	}

	events, err := repo.ListHistory(ctx, compliance.EntityQualification, 7)
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(events) != 2 || events[0].Action != compliance.ActionCreated || events[1].Payload["next_due_date"] != "2036-02-01" {
		t.Fatalf("ListHistory() = %+v", events)
	}
}
