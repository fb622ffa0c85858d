package cmd

import (
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compliance HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var app *bootstrap.App
		var router http.Handler
		stop, err := startApp(cmd.Context(), &app, &router)
		if err != nil {
			return err
		}
		defer stop()

		ctx, stopSignals := signal.NotifyContext(commandContext(cmd, app), syscall.SIGINT, syscall.SIGTERM)
		defer stopSignals()

		migrate, _ := cmd.Flags().GetBool("migrate")
		if migrate {
			if err := app.InitSchema(ctx); err != nil {
				return errs.Wrap(err, "initialize schema")
			}
		}

		cfg := app.Config.HTTP
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		if err := httpapi.Serve(ctx, cfg, router); err != nil {
			logging.Error(ctx, "http server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve http")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
	serveCmd.Flags().Bool("migrate", false, "Run schema migration before serving")
}
