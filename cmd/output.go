package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
)

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return errs.Wrap(err, "write table")
	}
	return nil
}

func qualificationRow(q domain.Qualification) []string {
	interval := "-"
	if q.IntervalMonths != nil {
		interval = strconv.Itoa(*q.IntervalMonths)
	}
	return []string{
		strconv.FormatUint(q.ID, 10),
		q.CarID,
		dashIfEmpty(q.TypeCode),
		string(q.Status),
		dashIfEmpty(domain.FormatDate(q.LastCompletedDate)),
		dashIfEmpty(domain.FormatDate(q.NextDueDate)),
		dashIfEmpty(domain.FormatDate(q.ExpiryDate)),
		interval,
	}
}

var qualificationHeaders = []string{"ID", "CAR", "TYPE", "STATUS", "LAST DONE", "NEXT DUE", "EXPIRY", "INTERVAL"}

func alertRow(a domain.Alert) []string {
	acked := "-"
	if a.IsAcknowledged {
		acked = dashIfEmpty(a.AcknowledgedBy)
	}
	return []string{
		strconv.FormatUint(a.ID, 10),
		strconv.FormatUint(a.QualificationID, 10),
		a.CarID,
		dashIfEmpty(a.TypeCode),
		string(a.AlertType),
		strconv.Itoa(a.DaysUntilDue),
		dashIfEmpty(domain.FormatDate(a.NextDueDate)),
		acked,
	}
}

var alertHeaders = []string{"ID", "QUALIFICATION", "CAR", "TYPE", "ALERT", "DAYS", "NEXT DUE", "ACK BY"}

func writeQualification(w io.Writer, q domain.Qualification) error {
	_, err := fmt.Fprintf(w,
		"qualification %d car=%s type=%s status=%s last_completed=%s next_due=%s expiry=%s exempt=%t updated_at=%s\n",
		q.ID,
		q.CarID,
		dashIfEmpty(q.TypeCode),
		q.Status,
		dashIfEmpty(domain.FormatDate(q.LastCompletedDate)),
		dashIfEmpty(domain.FormatDate(q.NextDueDate)),
		dashIfEmpty(domain.FormatDate(q.ExpiryDate)),
		q.IsExempt,
		q.UpdatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	)
	if err != nil {
		return errs.Wrap(err, "write qualification")
	}
	return nil
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
