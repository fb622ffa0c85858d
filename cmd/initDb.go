/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

// initDbCmd represents the initDb command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema and optionally seed qualification types",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *compliance.Service) error {
		ctx := cmd.Context()
		logging.Info(ctx, "start init-db")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized: %s\n", app.Config.Database.DSN); err != nil {
			return errs.Wrap(err, "write init-db output")
		}

		seedFile, _ := cmd.Flags().GetString("seed-types")
		if strings.TrimSpace(seedFile) == "" {
			return nil
		}
		count, err := app.SeedTypes(ctx, seedFile)
		if err != nil {
			logging.Error(ctx, "seed qualification types failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed qualification types")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "qualification types seeded: %d from %s\n", count, seedFile); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
	initDbCmd.Flags().String("seed-types", "", "Qualification type catalog to upsert (.toml or .yaml)")
}
