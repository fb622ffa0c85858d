package alertconsole

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

const maxAuditLines = 6

// AlertService is the slice of the compliance service the console drives.
type AlertService interface {
	ListAlerts(ctx context.Context, filter ports.AlertFilter, page ports.Page) (compliance.ListAlertsResult, error)
	AcknowledgeAlert(ctx context.Context, id uint64, actorID string) (bool, error)
	Stats(ctx context.Context) (domain.FleetStats, error)
}

type Options struct {
	Actor            string
	CarID            string
	AlertType        string
	ShowAcknowledged bool
	Limit            int
	RefreshInterval  time.Duration
}

type alertModel struct {
	ctx             context.Context
	service         AlertService
	actor           string
	carID           string
	alertType       domain.AlertType
	showAcked       bool
	limit           int
	refreshInterval time.Duration

	alerts        []domain.Alert
	total         int64
	selectedIndex int
	stats         domain.FleetStats
	hasStats      bool
	status        string
	auditLogs     []string
}

type alertsLoadedMsg struct {
	items []domain.Alert
	total int64
	err   error
}

type statsLoadedMsg struct {
	stats domain.FleetStats
	err   error
}

type tickMsg struct{}

type ackDoneMsg struct {
	alertID uint64
	ok      bool
	err     error
}

func NewAlertModel(ctx context.Context, service AlertService, options Options) tea.Model {
	actor := strings.TrimSpace(options.Actor)
	if actor == "" {
		actor = "console"
	}
	limit := options.Limit
	if limit <= 0 || limit > compliance.MaxPageLimit {
		limit = compliance.DefaultPageLimit
	}
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &alertModel{
		ctx:             logging.WithAttrs(ctx, slog.String("component", "usecase.alertconsole")),
		service:         service,
		actor:           actor,
		carID:           strings.TrimSpace(options.CarID),
		alertType:       domain.AlertType(strings.TrimSpace(options.AlertType)),
		showAcked:       options.ShowAcknowledged,
		limit:           limit,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *alertModel) Init() tea.Cmd {
	return tea.Batch(m.loadAlertsCmd(), m.loadStatsCmd(), m.tickCmd())
}

func (m *alertModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadAlertsCmd(), m.loadStatsCmd(), m.tickCmd())
	case alertsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.alerts = msg.items
		m.total = msg.total
		if m.selectedIndex >= len(m.alerts) {
			m.selectedIndex = len(m.alerts) - 1
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		if len(m.alerts) == 0 {
			m.status = "no alerts"
		} else {
			m.status = fmt.Sprintf("showing %d of %d", len(m.alerts), m.total)
		}
		return m, nil
	case statsLoadedMsg:
		if msg.err != nil {
			m.status = "stats failed: " + msg.err.Error()
			return m, nil
		}
		m.stats = msg.stats
		m.hasStats = true
		return m, nil
	case ackDoneMsg:
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("acknowledge #%d failed: %v", msg.alertID, msg.err)
			m.appendAuditLog(msg.alertID, "failed")
		case !msg.ok:
			m.status = fmt.Sprintf("alert #%d was already acknowledged", msg.alertID)
			m.appendAuditLog(msg.alertID, "noop")
		default:
			m.status = fmt.Sprintf("alert #%d acknowledged", msg.alertID)
			m.appendAuditLog(msg.alertID, "acknowledged")
		}
		return m, tea.Batch(m.loadAlertsCmd(), m.loadStatsCmd())
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, tea.Batch(m.loadAlertsCmd(), m.loadStatsCmd())
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.alerts)-1 {
				m.selectedIndex++
			}
			return m, nil
		case "t":
			m.showAcked = !m.showAcked
			m.selectedIndex = 0
			return m, m.loadAlertsCmd()
		case "a":
			return m, m.acknowledgeCmd()
		}
	}
	return m, nil
}

func (m *alertModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	overdueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Railsync Compliance Alerts"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"actor=%s car=%s type=%s view=%s refresh=%s",
		m.actor,
		firstNonEmpty(m.carID, "all"),
		firstNonEmpty(string(m.alertType), "all"),
		m.viewName(),
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Fleet"))
	builder.WriteString("\n")
	if !m.hasStats {
		builder.WriteString(dimStyle.Render("- no stats"))
	} else {
		s := m.stats
		builder.WriteString(fmt.Sprintf(
			"total=%d current=%d due_soon=%d due=%d overdue=%d exempt=%d unknown=%d\n",
			s.TotalQualifications, s.Current, s.DueSoon, s.Due, s.Overdue, s.Exempt, s.Unknown,
		))
		builder.WriteString(fmt.Sprintf("overdue_cars=%d due_cars=%d unacknowledged_alerts=%d", s.OverdueCars, s.DueCars, s.UnacknowledgedAlerts))
	}
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Alerts"))
	builder.WriteString("\n")
	if len(m.alerts) == 0 {
		builder.WriteString(dimStyle.Render("- no alerts"))
		builder.WriteString("\n")
	}
	for index, alert := range m.alerts {
		line := formatAlertLine(alert)
		switch {
		case index == m.selectedIndex:
			builder.WriteString(selectedStyle.Render("> " + line))
		case alert.AlertType == domain.AlertOverdue && !alert.IsAcknowledged:
			builder.WriteString(overdueStyle.Render("  " + line))
		default:
			builder.WriteString("  " + line)
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	if len(m.auditLogs) > 0 {
		builder.WriteString(sectionStyle.Render("Audit"))
		builder.WriteString("\n")
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line + "\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("keys: j/k move  a acknowledge  t toggle acknowledged  g refresh  q quit"))
	builder.WriteString("\n")
	return builder.String()
}

func (m *alertModel) viewName() string {
	if m.showAcked {
		return "acknowledged"
	}
	return "pending"
}

func (m *alertModel) filter() ports.AlertFilter {
	acknowledged := m.showAcked
	return ports.AlertFilter{
		Acknowledged: &acknowledged,
		AlertType:    m.alertType,
		CarID:        m.carID,
	}
}

func (m *alertModel) loadAlertsCmd() tea.Cmd {
	filter := m.filter()
	limit := m.limit
	return func() tea.Msg {
		result, err := m.service.ListAlerts(m.ctx, filter, ports.Page{Limit: limit})
		if err != nil {
			return alertsLoadedMsg{err: err}
		}
		return alertsLoadedMsg{items: result.Alerts, total: result.Total}
	}
}

func (m *alertModel) loadStatsCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.service.Stats(m.ctx)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (m *alertModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *alertModel) acknowledgeCmd() tea.Cmd {
	alert, ok := m.selectedAlert()
	if !ok {
		m.status = "no alert selected"
		return nil
	}
	if alert.IsAcknowledged {
		m.status = fmt.Sprintf("alert #%d is already acknowledged", alert.ID)
		return nil
	}

	actor := m.actor
	return func() tea.Msg {
		acked, err := m.service.AcknowledgeAlert(m.ctx, alert.ID, actor)
		if err != nil {
			logging.Warn(m.ctx, "acknowledge alert failed", slog.Uint64("alert_id", alert.ID), slog.String("err", err.Error()))
		}
		return ackDoneMsg{alertID: alert.ID, ok: acked, err: err}
	}
}

func (m *alertModel) selectedAlert() (domain.Alert, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.alerts) {
		return domain.Alert{}, false
	}
	return m.alerts[m.selectedIndex], true
}

func (m *alertModel) appendAuditLog(alertID uint64, result string) {
	line := fmt.Sprintf("%s ack #%d by %s: %s", time.Now().Format("15:04:05"), alertID, m.actor, result)
	m.auditLogs = append(m.auditLogs, line)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[len(m.auditLogs)-maxAuditLines:]
	}
}

func formatAlertLine(alert domain.Alert) string {
	due := firstNonEmpty(domain.FormatDate(alert.NextDueDate), "-")
	line := fmt.Sprintf(
		"#%d %s car=%s type=%s due=%s days=%d",
		alert.ID,
		alert.AlertType,
		alert.CarID,
		firstNonEmpty(alert.TypeCode, "-"),
		due,
		alert.DaysUntilDue,
	)
	if alert.IsAcknowledged {
		line += " ack_by=" + firstNonEmpty(alert.AcknowledgedBy, "-")
	}
	return line
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
