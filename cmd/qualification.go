package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

var qualificationCmd = &cobra.Command{
	Use:     "qualification",
	Aliases: []string{"qual"},
	Short:   "Manage railcar qualification records",
}

var qualificationTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List qualification types",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		includeInactive, _ := cmd.Flags().GetBool("all")
		types, err := svc.ListQualificationTypes(cmd.Context(), includeInactive)
		if err != nil {
			return errs.Wrap(err, "list qualification types")
		}

		rows := make([][]string, 0, len(types))
		for _, qt := range types {
			interval := "-"
			if qt.DefaultIntervalMonths != nil {
				interval = strconv.Itoa(*qt.DefaultIntervalMonths)
			}
			rows = append(rows, []string{
				strconv.FormatUint(qt.ID, 10),
				qt.Code,
				qt.Name,
				dashIfEmpty(qt.RegulatoryBody),
				interval,
				strconv.FormatBool(qt.IsActive),
			})
		}
		return writeTable(cmd.OutOrStdout(), []string{"ID", "CODE", "NAME", "BODY", "DEFAULT INTERVAL", "ACTIVE"}, rows)
	}),
}

var qualificationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List qualification records ordered by next due date",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		carID, _ := cmd.Flags().GetString("car")
		rawStatus, _ := cmd.Flags().GetString("status")
		typeCode, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		result, err := svc.ListQualifications(cmd.Context(), ports.QualificationFilter{
			CarID:    carID,
			Status:   domain.Status(strings.TrimSpace(rawStatus)),
			TypeCode: typeCode,
		}, ports.Page{Limit: limit, Offset: offset})
		if err != nil {
			return errs.Wrap(err, "list qualifications")
		}

		rows := make([][]string, 0, len(result.Qualifications))
		for _, q := range result.Qualifications {
			rows = append(rows, qualificationRow(q))
		}
		if err := writeTable(cmd.OutOrStdout(), qualificationHeaders, rows); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "showing %d of %d\n", len(rows), result.Total)
		return err
	}),
}

var qualificationCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a qualification record for a car",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		ctx := cmd.Context()

		input := compliance.CreateQualificationInput{}
		input.CarID, _ = cmd.Flags().GetString("car")
		input.TypeCode, _ = cmd.Flags().GetString("type")
		input.QualificationTypeID, _ = cmd.Flags().GetUint64("type-id")
		input.IsExempt, _ = cmd.Flags().GetBool("exempt")
		input.ExemptReason, _ = cmd.Flags().GetString("exempt-reason")
		input.Notes, _ = cmd.Flags().GetString("notes")
		if cmd.Flags().Changed("interval") {
			interval, _ := cmd.Flags().GetInt("interval")
			input.IntervalMonths = &interval
		}
		input.LastCompletedDate = optionalStringFlag(cmd, "last-completed")
		input.NextDueDate = optionalStringFlag(cmd, "next-due")

		record, err := svc.Create(ctx, input, actorID)
		if err != nil {
			logging.Error(ctx, "create qualification failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create qualification")
		}
		return writeQualification(cmd.OutOrStdout(), record)
	}),
}

var qualificationCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Record a completed qualification and roll the due date forward",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		ctx := cmd.Context()
		id, _ := cmd.Flags().GetUint64("id")

		input := compliance.CompleteQualificationInput{}
		input.CompletedDate, _ = cmd.Flags().GetString("date")
		input.CompletedBy, _ = cmd.Flags().GetString("by")
		input.CompletionShopCode, _ = cmd.Flags().GetString("shop")
		input.CertificateNumber, _ = cmd.Flags().GetString("certificate")
		input.Notes = optionalStringFlag(cmd, "notes")
		if raw := optionalStringFlag(cmd, "expected-updated-at"); raw != nil {
			expected, err := time.Parse(time.RFC3339Nano, *raw)
			if err != nil {
				return errs.Wrapf(err, "parse --expected-updated-at %q", *raw)
			}
			input.ExpectedUpdatedAt = &expected
		}

		record, err := svc.Complete(ctx, id, input, actorID)
		if err != nil {
			logging.Error(ctx, "complete qualification failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "complete qualification")
		}
		if record == nil {
			return fmt.Errorf("qualification %d not found", id)
		}
		return writeQualification(cmd.OutOrStdout(), *record)
	}),
}

var qualificationBulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update",
	Short: "Apply one exemption or notes patch to many qualifications",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		ctx := cmd.Context()
		ids, _ := cmd.Flags().GetUintSlice("ids")

		var patch domain.BulkPatch
		if cmd.Flags().Changed("exempt") {
			exempt, _ := cmd.Flags().GetBool("exempt")
			patch.IsExempt = &exempt
		}
		patch.ExemptReason = optionalStringFlag(cmd, "exempt-reason")
		patch.Notes = optionalStringFlag(cmd, "notes")

		targets := make([]uint64, 0, len(ids))
		for _, id := range ids {
			targets = append(targets, uint64(id))
		}
		result, err := svc.BulkUpdate(ctx, targets, patch, actorID)
		if err != nil {
			logging.Error(ctx, "bulk update failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "bulk update qualifications")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %d qualifications batch=%s\n", result.Updated, dashIfEmpty(result.BatchID))
		return err
	}),
}

var qualificationPriorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Score a car's shop priority from its qualification dates",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		carID, _ := cmd.Flags().GetString("car")
		var asOf time.Time
		if raw := optionalStringFlag(cmd, "as-of"); raw != nil {
			parsed, err := domain.ParseDate("as_of", *raw)
			if err != nil {
				return err
			}
			asOf = parsed
		}

		result, err := svc.Priority(cmd.Context(), carID, asOf)
		if err != nil {
			return errs.Wrap(err, "score priority")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(),
			"car=%s priority=%d label=%s reason=%q overdue=%d due=%d due_soon=%d earliest_due=%s\n",
			result.CarID,
			result.RecommendedPriority,
			result.PriorityLabel,
			result.Reason,
			result.OverdueCount,
			result.DueCount,
			result.DueSoonCount,
			dashIfEmpty(domain.FormatDate(result.EarliestDue)),
		)
		return err
	}),
}

var qualificationHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the audit trail of one qualification",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		id, _ := cmd.Flags().GetUint64("id")
		events, err := svc.History(cmd.Context(), id)
		if err != nil {
			return errs.Wrap(err, "list history")
		}
		for _, event := range events {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s actor=%s payload=%v\n",
				event.CreatedAt.Format(time.RFC3339), event.Action, event.ActorID, event.Payload); err != nil {
				return errs.Wrap(err, "write history output")
			}
		}
		return nil
	}),
}

func optionalStringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}

func init() {
	rootCmd.AddCommand(qualificationCmd)
	qualificationCmd.AddCommand(
		qualificationTypesCmd,
		qualificationListCmd,
		qualificationCreateCmd,
		qualificationCompleteCmd,
		qualificationBulkUpdateCmd,
		qualificationPriorityCmd,
		qualificationHistoryCmd,
	)

	qualificationTypesCmd.Flags().Bool("all", false, "Include inactive types")

	qualificationListCmd.Flags().String("car", "", "Filter by car id")
	qualificationListCmd.Flags().String("status", "", "Filter by status (current|due_soon|due|overdue|exempt|unknown)")
	qualificationListCmd.Flags().String("type", "", "Filter by qualification type code")
	qualificationListCmd.Flags().Int("limit", compliance.DefaultPageLimit, "Page size")
	qualificationListCmd.Flags().Int("offset", 0, "Page offset")

	qualificationCreateCmd.Flags().String("car", "", "Car id")
	qualificationCreateCmd.Flags().String("type", "", "Qualification type code")
	qualificationCreateCmd.Flags().Uint64("type-id", 0, "Qualification type id (alternative to --type)")
	qualificationCreateCmd.Flags().Int("interval", 0, "Interval in months (defaults to the type's)")
	qualificationCreateCmd.Flags().String("last-completed", "", "Last completed date YYYY-MM-DD")
	qualificationCreateCmd.Flags().String("next-due", "", "Next due date YYYY-MM-DD")
	qualificationCreateCmd.Flags().Bool("exempt", false, "Mark the record exempt")
	qualificationCreateCmd.Flags().String("exempt-reason", "", "Reason for exemption")
	qualificationCreateCmd.Flags().String("notes", "", "Notes")
	_ = qualificationCreateCmd.MarkFlagRequired("car")

	qualificationCompleteCmd.Flags().Uint64("id", 0, "Qualification id")
	qualificationCompleteCmd.Flags().String("date", "", "Completion date YYYY-MM-DD")
	qualificationCompleteCmd.Flags().String("by", "", "Who performed the work")
	qualificationCompleteCmd.Flags().String("shop", "", "Completion shop code")
	qualificationCompleteCmd.Flags().String("certificate", "", "Certificate number")
	qualificationCompleteCmd.Flags().String("notes", "", "Replace notes")
	qualificationCompleteCmd.Flags().String("expected-updated-at", "", "Reject if the record changed since this RFC3339 timestamp")
	_ = qualificationCompleteCmd.MarkFlagRequired("id")
	_ = qualificationCompleteCmd.MarkFlagRequired("date")

	qualificationBulkUpdateCmd.Flags().UintSlice("ids", nil, "Comma separated qualification ids")
	qualificationBulkUpdateCmd.Flags().Bool("exempt", false, "Set (true) or clear (false) exemption")
	qualificationBulkUpdateCmd.Flags().String("exempt-reason", "", "Exemption reason")
	qualificationBulkUpdateCmd.Flags().String("notes", "", "Notes")

	qualificationPriorityCmd.Flags().String("car", "", "Car id")
	qualificationPriorityCmd.Flags().String("as-of", "", "Score as of this date (default today)")
	_ = qualificationPriorityCmd.MarkFlagRequired("car")

	qualificationHistoryCmd.Flags().Uint64("id", 0, "Qualification id")
	_ = qualificationHistoryCmd.MarkFlagRequired("id")
}
