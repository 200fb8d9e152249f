package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/miguelangat/dividela2-sub008/internal/config"
	"github.com/miguelangat/dividela2-sub008/internal/storage"
)

// initStorage opens the database with proper path expansion and runs
// pending migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
