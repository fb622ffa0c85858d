package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/alertconsole"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

var consoleAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Start the alert acknowledgement console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		carID, _ := cmd.Flags().GetString("car")
		alertType, _ := cmd.Flags().GetString("type")
		showAcked, _ := cmd.Flags().GetBool("acknowledged")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")

		model := alertconsole.NewAlertModel(cmd.Context(), svc, alertconsole.Options{
			Actor:            actorID,
			CarID:            carID,
			AlertType:        alertType,
			ShowAcknowledged: showAcked,
			RefreshInterval:  refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run alert console")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleAlertsCmd)
	consoleAlertsCmd.Flags().String("car", "", "Optional car filter")
	consoleAlertsCmd.Flags().String("type", "", "Optional alert type filter (warning_90|warning_30|overdue)")
	consoleAlertsCmd.Flags().Bool("acknowledged", false, "Start on the acknowledged view")
	consoleAlertsCmd.Flags().Duration("refresh-interval", 10*time.Second, "Auto refresh interval")
}
