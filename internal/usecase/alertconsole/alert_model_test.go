package alertconsole

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

type fakeAlertService struct {
	alerts      []domain.Alert
	lastFilter  ports.AlertFilter
	acked       []uint64
	ackedActors []string
	ackErr      error
}

func (f *fakeAlertService) ListAlerts(_ context.Context, filter ports.AlertFilter, _ ports.Page) (compliance.ListAlertsResult, error) {
	f.lastFilter = filter
	out := make([]domain.Alert, 0, len(f.alerts))
	for _, alert := range f.alerts {
		if filter.Acknowledged != nil && alert.IsAcknowledged != *filter.Acknowledged {
			continue
		}
		out = append(out, alert)
	}
	return compliance.ListAlertsResult{Alerts: out, Total: int64(len(out))}, nil
}

func (f *fakeAlertService) AcknowledgeAlert(_ context.Context, id uint64, actorID string) (bool, error) {
	if f.ackErr != nil {
		return false, f.ackErr
	}
	for i := range f.alerts {
		if f.alerts[i].ID == id && !f.alerts[i].IsAcknowledged {
			f.alerts[i].IsAcknowledged = true
			f.alerts[i].AcknowledgedBy = actorID
			f.acked = append(f.acked, id)
			f.ackedActors = append(f.ackedActors, actorID)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlertService) Stats(context.Context) (domain.FleetStats, error) {
	return domain.FleetStats{TotalQualifications: 3, Overdue: 1, OverdueCars: 1, UnacknowledgedAlerts: 2}, nil
}

func newTestModel(svc *fakeAlertService) *alertModel {
	return NewAlertModel(context.Background(), svc, Options{Actor: "ops-1"}).(*alertModel)
}

func loadAlerts(t *testing.T, m *alertModel) {
	t.Helper()
	msg := m.loadAlertsCmd()()
	if _, cmd := m.Update(msg); cmd != nil {
		t.Fatalf("Update(alertsLoaded) returned a command")
	}
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestAcknowledgeSelectedAlert(t *testing.T) {
	svc := &fakeAlertService{alerts: []domain.Alert{
		{ID: 1, CarID: "A", AlertType: domain.AlertWarning90},
		{ID: 2, CarID: "B", AlertType: domain.AlertOverdue},
	}}
	m := newTestModel(svc)
	loadAlerts(t, m)

	m.Update(key('j'))
	if m.selectedIndex != 1 {
		t.Fatalf("selectedIndex = %d, want 1", m.selectedIndex)
	}

	_, cmd := m.Update(key('a'))
	if cmd == nil {
		t.Fatalf("Update(a) returned no command")
	}
	done, ok := cmd().(ackDoneMsg)
	if !ok || !done.ok || done.alertID != 2 {
		t.Fatalf("ack command = %+v", done)
	}
	if len(svc.acked) != 1 || svc.ackedActors[0] != "ops-1" {
		t.Fatalf("acknowledged = %v by %v", svc.acked, svc.ackedActors)
	}

	m.Update(done)
	if !strings.Contains(m.status, "#2 acknowledged") || len(m.auditLogs) != 1 {
		t.Fatalf("status = %q audit = %v", m.status, m.auditLogs)
	}

	loadAlerts(t, m)
	if len(m.alerts) != 1 || m.selectedIndex != 0 {
		t.Fatalf("after reload alerts = %+v selected = %d", m.alerts, m.selectedIndex)
	}
}

func TestAcknowledgeReportsFailure(t *testing.T) {
	svc := &fakeAlertService{
		alerts: []domain.Alert{{ID: 7, CarID: "A", AlertType: domain.AlertWarning30}},
		ackErr: errors.New("database is locked"),
	}
	m := newTestModel(svc)
	loadAlerts(t, m)

	_, cmd := m.Update(key('a'))
	m.Update(cmd())
	if !strings.Contains(m.status, "failed") {
		t.Fatalf("status = %q, want failure", m.status)
	}
}

func TestToggleShowsAcknowledged(t *testing.T) {
	svc := &fakeAlertService{alerts: []domain.Alert{
		{ID: 1, CarID: "A", AlertType: domain.AlertWarning90, IsAcknowledged: true, AcknowledgedBy: "ops-9"},
	}}
	m := newTestModel(svc)
	loadAlerts(t, m)
	if len(m.alerts) != 0 {
		t.Fatalf("pending view = %+v, want empty", m.alerts)
	}

	_, cmd := m.Update(key('t'))
	m.Update(cmd())
	if svc.lastFilter.Acknowledged == nil || !*svc.lastFilter.Acknowledged {
		t.Fatalf("filter = %+v, want acknowledged", svc.lastFilter)
	}
	if len(m.alerts) != 1 {
		t.Fatalf("acknowledged view = %+v", m.alerts)
	}

	if _, cmd := m.Update(key('a')); cmd != nil {
		t.Fatalf("Update(a) on acknowledged alert returned a command")
	}
	if !strings.Contains(m.View(), "ack_by=ops-9") {
		t.Fatalf("View() missing acknowledger:\n%s", m.View())
	}
}

func TestViewRendersStats(t *testing.T) {
	svc := &fakeAlertService{}
	m := newTestModel(svc)
	m.Update(m.loadStatsCmd()())

	view := m.View()
	for _, want := range []string{"overdue=1", "unacknowledged_alerts=2", "no alerts"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View() missing %q:\n%s", want, view)
		}
	}
}
