package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/model"
	"github.com/kestrelfin/kestrel/internal/service"
)

// BackupVersion identifies the backup document format.
const BackupVersion = 1

// ExportAll serializes every collection into a single backup document.
func (s *SQLiteStorage) ExportAll(ctx context.Context) (*service.Backup, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	patterns, err := s.ListPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export patterns: %w", err)
	}

	records, err := s.ListTransactionRecords(ctx, service.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to export transaction records: %w", err)
	}

	pairs, err := s.ListDissimilarPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export dissimilar pairs: %w", err)
	}

	uploads, err := s.listAllUploads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export uploads: %w", err)
	}

	return &service.Backup{
		Version:            BackupVersion,
		ExportedAt:         time.Now(),
		Patterns:           patterns,
		TransactionRecords: records,
		DissimilarPairs:    pairs,
		Uploads:            uploads,
	}, nil
}

// ImportAll loads a backup document into the store, all-or-nothing.
// Patterns and transaction records receive fresh identifiers; dissimilar
// pair keys and upload entries are carried verbatim.
func (s *SQLiteStorage) ImportAll(ctx context.Context, backup *service.Backup) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if backup == nil {
		return fmt.Errorf("%w: backup cannot be nil", common.ErrInvalidArgument)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("%w: unsupported backup version %d", common.ErrInvalidArgument, backup.Version)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range backup.Patterns {
			pattern := backup.Patterns[i]
			pattern.ID = uuid.New().String()

			examplesJSON, err := json.Marshal(pattern.Examples)
			if err != nil {
				return fmt.Errorf("failed to marshal examples: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO patterns (`+patternColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(merchant_name, category, normalized_description) DO UPDATE SET
					description = excluded.description,
					amount = excluded.amount,
					usage_count = excluded.usage_count,
					confidence = excluded.confidence,
					examples = excluded.examples,
					last_used = excluded.last_used
			`, pattern.ID, pattern.Description, pattern.NormalizedDescription, pattern.MerchantName,
				pattern.Category, pattern.Amount, pattern.UsageCount, pattern.Confidence,
				string(examplesJSON), pattern.CreatedAt, pattern.LastUsed); err != nil {
				return fmt.Errorf("failed to import pattern: %w", err)
			}
		}

		if len(backup.TransactionRecords) > 0 {
			records := make([]model.TransactionRecord, len(backup.TransactionRecords))
			copy(records, backup.TransactionRecords)
			for i := range records {
				records[i].ID = uuid.New().String()
			}
			if err := saveTransactionRecordsTx(ctx, tx, records); err != nil {
				return fmt.Errorf("failed to import transaction records: %w", err)
			}
		}

		for _, pair := range backup.DissimilarPairs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO dissimilar_pairs (pair_key, description1, description2, timestamp)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(pair_key) DO UPDATE SET
					description1 = excluded.description1,
					description2 = excluded.description2,
					timestamp = excluded.timestamp
			`, pair.PairKey, pair.Description1, pair.Description2, pair.Timestamp); err != nil {
				return fmt.Errorf("failed to import dissimilar pair: %w", err)
			}
		}

		for i := range backup.Uploads {
			upload := backup.Uploads[i]
			if upload.ID == "" {
				upload.ID = uuid.New().String()
			}

			var year any
			if upload.Year != 0 {
				year = upload.Year
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO upload_history (`+uploadColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, upload.ID, upload.FileName, upload.FileData, upload.FileSize,
				upload.TransactionCount, year, upload.UploadDate,
				upload.Summary.TotalIncome, upload.Summary.TotalExpenses,
				upload.Summary.NetBalance, upload.Summary.IncomeCount, upload.Summary.ExpenseCount); err != nil {
				return fmt.Errorf("failed to import upload: %w", err)
			}
		}

		return nil
	})
}
