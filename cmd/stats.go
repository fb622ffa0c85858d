package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fleet compliance statistics",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		stats, err := svc.Stats(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "read fleet stats")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(),
			"total=%d current=%d due_soon=%d due=%d overdue=%d exempt=%d unknown=%d\noverdue_cars=%d due_cars=%d unacknowledged_alerts=%d\n",
			stats.TotalQualifications, stats.Current, stats.DueSoon, stats.Due, stats.Overdue, stats.Exempt, stats.Unknown,
			stats.OverdueCars, stats.DueCars, stats.UnacknowledgedAlerts,
		)
		return err
	}),
}

var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Re-derive every non-exempt qualification status",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		ctx := cmd.Context()

		var now time.Time
		if raw := optionalStringFlag(cmd, "now"); raw != nil {
			parsed, err := domain.ParseDate("now", *raw)
			if err != nil {
				return err
			}
			now = parsed
		}

		result, err := svc.RecalculateAll(ctx, now)
		if err != nil {
			logging.Error(ctx, "recalculate failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "recalculate statuses")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "recalculated: updated=%d scanned=%d conflicts=%d failed=%d\n",
			result.Updated, result.Scanned, result.Conflicts, result.Failed)
		return err
	}),
}

func init() {
	rootCmd.AddCommand(statsCmd, recalculateCmd)
	recalculateCmd.Flags().String("now", "", "Evaluate as of this date YYYY-MM-DD (default today)")
}
