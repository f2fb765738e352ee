// Package backend opens the store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/repository/mongodb"
	"github.com/mamadbah2/herdbook/internal/repository/sqlstore"
)

// Open connects to the configured backend and, when migrate is set, creates
// or updates its schema.
func Open(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (repository.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store repository.Store
		err   error
	)
	switch cfg.Store.Driver {
	case config.DriverMongoDB:
		store, err = mongodb.Open(ctx, mongodb.Options{
			URI:          cfg.MongoDB.URI,
			Database:     cfg.MongoDB.DBName,
			Transactions: cfg.MongoDB.Transactions,
		}, logger.Named("repo.mongodb"))
	default:
		store, err = sqlstore.Open(sqlstore.Options{
			Driver: cfg.Store.Driver,
			DSN:    cfg.Store.DSN,
		}, logger.Named("repo.sql"))
	}
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("migrate %s store: %w", cfg.Store.Driver, err)
		}
	}

	logger.Info("store ready", zap.String("driver", cfg.Store.Driver), zap.Bool("atomic", store.Atomic()))
	return store, nil
}
