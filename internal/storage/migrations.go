package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// Migrations only ever add collections and indexes; opening a database at
// an older version must never touch existing rows.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Learned categorization patterns",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS patterns (
					id TEXT PRIMARY KEY,
					description TEXT NOT NULL,
					normalized_description TEXT NOT NULL,
					merchant_name TEXT NOT NULL,
					category TEXT NOT NULL,
					amount REAL DEFAULT 0,
					usage_count INTEGER NOT NULL DEFAULT 1,
					confidence REAL NOT NULL DEFAULT 0.7,
					examples TEXT,
					created_at DATETIME NOT NULL,
					last_used DATETIME NOT NULL
				)`,
				`CREATE UNIQUE INDEX idx_patterns_identity
					ON patterns(merchant_name, category, normalized_description)`,
				`CREATE INDEX idx_patterns_merchant ON patterns(merchant_name)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Upload history",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS upload_history (
					id TEXT PRIMARY KEY,
					file_name TEXT NOT NULL,
					file_data BLOB,
					file_size INTEGER NOT NULL DEFAULT 0,
					transaction_count INTEGER NOT NULL DEFAULT 0,
					year INTEGER,
					upload_date DATETIME NOT NULL,
					total_income REAL NOT NULL DEFAULT 0,
					total_expenses REAL NOT NULL DEFAULT 0,
					net_balance REAL NOT NULL DEFAULT 0,
					income_count INTEGER NOT NULL DEFAULT 0,
					expense_count INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_upload_history_date ON upload_history(upload_date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Dissimilar description pairs",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS dissimilar_pairs (
					pair_key TEXT PRIMARY KEY,
					description1 TEXT NOT NULL,
					description2 TEXT NOT NULL,
					timestamp DATETIME NOT NULL
				)
			`)
			if err != nil {
				return fmt.Errorf("failed to create dissimilar_pairs table: %w", err)
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Transaction records from processed statements",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transaction_records (
					id TEXT PRIMARY KEY,
					upload_id TEXT,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					amount REAL NOT NULL,
					direction TEXT NOT NULL,
					category TEXT,
					category_source TEXT NOT NULL DEFAULT 'none'
				)`,
				`CREATE INDEX idx_transaction_records_upload ON transaction_records(upload_id)`,
				`CREATE INDEX idx_transaction_records_date ON transaction_records(date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
