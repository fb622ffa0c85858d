package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/config"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/seed"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/schema"
	sqliterepo "github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/repository"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration", slog.String("database_driver", a.Config.Database.Driver))

	if err := schema.Migrate(ctx, a.DB); err != nil {
		return errs.Wrap(err, "migrate schema")
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}

// SeedTypes upserts the qualification type catalog at path.
func (a *App) SeedTypes(ctx context.Context, path string) (int, error) {
	types, err := seed.LoadCatalog(path)
	if err != nil {
		return 0, errs.Wrap(err, "load type catalog")
	}
	return seed.Apply(ctx, sqliterepo.NewComplianceRepository(a.DB), types)
}
