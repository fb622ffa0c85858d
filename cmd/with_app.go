package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

// startApp builds the fx graph for one command, fills targets and returns a
// stop function that runs the lifecycle OnStop hooks.
func startApp(ctx context.Context, targets ...any) (func(), error) {
	fxApp := fx.New(
		bootstrap.Module,
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		fx.Provide(
			fx.Annotate(
				func() string { return cfgFile },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		fx.Populate(targets...),
	)

	startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
	defer cancelStart()
	if err := fxApp.Start(startCtx); err != nil {
		logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
		return nil, errs.Wrap(err, "start fx application")
	}

	return func() {
		stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelStop()
		if err := fxApp.Stop(stopCtx); err != nil {
			logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
		}
	}, nil
}

// commandContext swaps the bootstrap logger for the one configured in app.log.
func commandContext(cmd *cobra.Command, app *bootstrap.App) context.Context {
	ctx := cmd.Context()
	if app != nil {
		logger := logging.New(cmd.ErrOrStderr(), app.Config.Log.Format, app.Config.Log.Level)
		ctx = logging.WithLogger(ctx, logger)
	}
	return logging.WithAttrs(ctx,
		slog.String("command", cmd.CommandPath()),
		slog.String("config_file", cfgFile),
	)
}

func withApp(run func(cmd *cobra.Command, app *bootstrap.App, svc *compliance.Service) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var app *bootstrap.App
		var svc *compliance.Service
		stop, err := startApp(ctx, &app, &svc)
		if err != nil {
			return err
		}
		defer stop()

		cmd.SetContext(commandContext(cmd, app))
		if err := run(cmd, app, svc); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
