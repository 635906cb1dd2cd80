package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/config"
	"github.com/kestrelfin/kestrel/internal/learn"
	"github.com/kestrelfin/kestrel/internal/service"
	"github.com/kestrelfin/kestrel/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// closeStorage closes the store, logging rather than failing on error.
func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "Failed to close storage", nil)
	}
}

// suggestThreshold resolves the minimum suggestion score from config,
// defaulting to the engine's built-in threshold.
func suggestThreshold() float64 {
	if threshold := viper.GetFloat64("suggest.threshold"); threshold > 0 {
		return threshold
	}
	return learn.DefaultScoreThreshold
}
