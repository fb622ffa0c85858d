package schema

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/model"
)

// Models lists every table owned by the compliance engine.
func Models() []any {
	return []any{
		&model.QualificationType{},
		&model.Qualification{},
		&model.Alert{},
		&model.HistoryEvent{},
		&model.KVEntry{},
	}
}

// Migrate creates or updates the tables and rebuilds the stats view.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if db == nil {
		return errors.New("db is required")
	}

	conn := db.WithContext(ctx)
	if err := conn.AutoMigrate(Models()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}
	if err := conn.Exec("DROP VIEW IF EXISTS " + model.StatsViewName).Error; err != nil {
		return errs.Wrap(err, "drop stats view")
	}
	if err := conn.Exec(model.StatsViewSQL).Error; err != nil {
		return errs.Wrap(err, "create stats view")
	}
	return nil
}
