package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect and acknowledge qualification alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts, pending by default",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		state, _ := cmd.Flags().GetString("state")
		alertType, _ := cmd.Flags().GetString("type")
		carID, _ := cmd.Flags().GetString("car")
		qualificationID, _ := cmd.Flags().GetUint64("qualification")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		filter := ports.AlertFilter{
			AlertType:       domain.AlertType(strings.TrimSpace(alertType)),
			CarID:           carID,
			QualificationID: qualificationID,
		}
		switch strings.ToLower(strings.TrimSpace(state)) {
		case "", "pending":
			acknowledged := false
			filter.Acknowledged = &acknowledged
		case "acknowledged":
			acknowledged := true
			filter.Acknowledged = &acknowledged
		case "all":
		default:
			return fmt.Errorf("unsupported --state %q (pending|acknowledged|all)", state)
		}

		result, err := svc.ListAlerts(cmd.Context(), filter, ports.Page{Limit: limit, Offset: offset})
		if err != nil {
			return errs.Wrap(err, "list alerts")
		}
		rows := make([][]string, 0, len(result.Alerts))
		for _, alert := range result.Alerts {
			rows = append(rows, alertRow(alert))
		}
		if err := writeTable(cmd.OutOrStdout(), alertHeaders, rows); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "showing %d of %d\n", len(rows), result.Total)
		return err
	}),
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge one alert",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		id, _ := cmd.Flags().GetUint64("id")
		ok, err := svc.AcknowledgeAlert(cmd.Context(), id, actorID)
		if err != nil {
			return errs.Wrap(err, "acknowledge alert")
		}
		if !ok {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "alert %d not found or already acknowledged\n", id)
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "alert %d acknowledged\n", id)
		return err
	}),
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd, alertsAckCmd)

	alertsListCmd.Flags().String("state", "pending", "pending|acknowledged|all")
	alertsListCmd.Flags().String("type", "", "Alert type (warning_90|warning_30|overdue)")
	alertsListCmd.Flags().String("car", "", "Filter by car id")
	alertsListCmd.Flags().Uint64("qualification", 0, "Filter by qualification id")
	alertsListCmd.Flags().Int("limit", compliance.DefaultPageLimit, "Page size")
	alertsListCmd.Flags().Int("offset", 0, "Page offset")

	alertsAckCmd.Flags().Uint64("id", 0, "Alert id")
	_ = alertsAckCmd.MarkFlagRequired("id")
}
