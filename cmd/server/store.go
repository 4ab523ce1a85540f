package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"virtualevents/config"
	"virtualevents/internal/domain"
	"virtualevents/internal/repository/mongodb"
	"virtualevents/internal/repository/postgres"
	"virtualevents/internal/repository/sqlite"
)

// openStore connects the backend named by cfg.StoreDriver and returns it with its closer.
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return s.Close() }, nil

	case config.DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return s.Close() }, nil

	case config.DriverMongo:
		s, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
