package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kestrelfin/kestrel/internal/model"
	"github.com/kestrelfin/kestrel/internal/service"
)

const transactionColumns = `id, upload_id, date, description, amount, direction, category, category_source`

// SaveTransactionRecords inserts a batch of parsed statement rows inside
// one database transaction, all-or-nothing.
func (s *SQLiteStorage) SaveTransactionRecords(ctx context.Context, records []model.TransactionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactionRecords(records); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveTransactionRecordsTx(ctx, tx, records)
	})
}

func saveTransactionRecordsTx(ctx context.Context, tx *sql.Tx, records []model.TransactionRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transaction_records (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if rec.CategorySource == "" {
			rec.CategorySource = model.SourceNone
		}

		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.UploadID, rec.Date, rec.Description,
			rec.Amount, rec.Direction, rec.Category, rec.CategorySource,
		); err != nil {
			return fmt.Errorf("failed to insert transaction record: %w", err)
		}
	}

	return nil
}

// ListTransactionRecords retrieves stored statement rows, optionally
// filtered by upload and capped by the filter limit.
func (s *SQLiteStorage) ListTransactionRecords(ctx context.Context, filter service.TransactionFilter) ([]model.TransactionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transaction_records`
	var args []any

	if filter.UploadID != "" {
		query += ` WHERE upload_id = ?`
		args = append(args, filter.UploadID)
	}
	query += ` ORDER BY date DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.TransactionRecord
	for rows.Next() {
		var rec model.TransactionRecord
		var uploadID, category sql.NullString

		if err := rows.Scan(
			&rec.ID, &uploadID, &rec.Date, &rec.Description,
			&rec.Amount, &rec.Direction, &category, &rec.CategorySource,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}

		rec.UploadID = uploadID.String
		rec.Category = category.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountTransactionRecords returns the total number of stored rows.
func (s *SQLiteStorage) CountTransactionRecords(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transaction_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transaction records: %w", err)
	}
	return count, nil
}
