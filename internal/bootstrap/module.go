package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/config"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/database"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	cacheinfra "github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/cache"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/events"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/httpapi"
	sqliterepo "github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/uow"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewComplianceRepository,
			fx.As(new(ports.ComplianceRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideCache),
	fx.Provide(providePublisher),
	fx.Provide(provideComplianceService),
	fx.Provide(httpapi.NewHandler),
	fx.Provide(httpapi.NewRouter),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideCache(lc fx.Lifecycle, ctx context.Context, cfg config.Config, db *gorm.DB) (ports.Cache, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	switch strings.ToLower(cfg.Cache.Driver) {
	case "redis":
		client, err := cacheinfra.Connect(logCtx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, errs.Wrap(err, "connect redis")
		}
		redisCache := cacheinfra.NewRedisCache(client)
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return redisCache.Close()
			},
		})
		logging.Info(logCtx, "stats cache ready", slog.String("driver", "redis"))
		return redisCache, nil
	case "none":
		return cacheinfra.NoopCache{}, nil
	default:
		return cacheinfra.NewSQLiteCache(db), nil
	}
}

func providePublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventPublisher, error) {
	if strings.ToLower(cfg.Events.Driver) != "nats" {
		return events.NoopPublisher{}, nil
	}

	publisher, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")),
		"event publisher ready",
		slog.String("driver", "nats"),
		slog.String("subject", events.StatusChangedSubject(cfg.Events.SubjectPrefix)),
	)
	return publisher, nil
}

type serviceParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Repo      ports.ComplianceRepository
	UoW       ports.UnitOfWork
	Cache     ports.Cache
	Publisher ports.EventPublisher
}

// provideComplianceService drains the background history queue on stop,
// before the database hook closes the connection.
func provideComplianceService(p serviceParams) *compliance.Service {
	svc := compliance.NewService(p.Repo, p.UoW, p.Cache, p.Publisher, compliance.Options{
		RecalcChunkSize:  p.Config.Compliance.RecalcChunkSize,
		HistoryQueueSize: p.Config.Compliance.HistoryQueueSize,
		StatsTTL:         p.Config.Cache.StatsTTL,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: svc.Close,
	})
	return svc
}
