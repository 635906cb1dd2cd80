package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/model"
)

// DefaultUploadListLimit caps ListUploads when the caller passes no limit.
const DefaultUploadListLimit = 50

const uploadColumns = `id, file_name, file_data, file_size, transaction_count, year,
	upload_date, total_income, total_expenses, net_balance, income_count, expense_count`

// RecordUpload creates a new upload history entry and returns its id.
// Entries are insert-only; nothing ever updates them afterwards.
func (s *SQLiteStorage) RecordUpload(ctx context.Context, record *model.UploadRecord) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateUploadRecord(record); err != nil {
		return "", err
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.UploadDate.IsZero() {
		record.UploadDate = time.Now()
	}

	var year any
	if record.Year != 0 {
		year = record.Year
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO upload_history (`+uploadColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.FileName, record.FileData, record.FileSize,
		record.TransactionCount, year, record.UploadDate,
		record.Summary.TotalIncome, record.Summary.TotalExpenses,
		record.Summary.NetBalance, record.Summary.IncomeCount, record.Summary.ExpenseCount)

	if err != nil {
		return "", fmt.Errorf("failed to record upload: %w", err)
	}

	return record.ID, nil
}

// ListUploads returns up to limit entries, newest upload date first.
// A non-positive limit applies the default of 50.
func (s *SQLiteStorage) ListUploads(ctx context.Context, limit int) ([]model.UploadRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultUploadListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+uploadColumns+`
		FROM upload_history
		ORDER BY upload_date DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.UploadRecord
	for rows.Next() {
		record, scanErr := scanUpload(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", scanErr)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// listAllUploads returns the complete history without a limit, for export.
func (s *SQLiteStorage) listAllUploads(ctx context.Context) ([]model.UploadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+uploadColumns+`
		FROM upload_history
		ORDER BY upload_date DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.UploadRecord
	for rows.Next() {
		record, scanErr := scanUpload(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", scanErr)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// GetUpload retrieves one upload history entry by id.
// Returns common.ErrNotFound when no entry exists.
func (s *SQLiteStorage) GetUpload(ctx context.Context, id string) (*model.UploadRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+uploadColumns+`
		FROM upload_history
		WHERE id = ?
	`, id)

	record, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return record, nil
}

// DeleteUpload removes one entry. Deleting a nonexistent id succeeds
// silently; the operation is idempotent.
func (s *SQLiteStorage) DeleteUpload(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM upload_history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// ClearUploads removes every upload history entry.
func (s *SQLiteStorage) ClearUploads(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM upload_history`); err != nil {
		return fmt.Errorf("failed to clear uploads: %w", err)
	}
	return nil
}

// ComputeUploadStats aggregates the whole upload history in one scan.
// AverageTransactionsPerFile rounds to the nearest integer and is zero
// when the history is empty.
func (s *SQLiteStorage) ComputeUploadStats(ctx context.Context) (*model.UploadStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var stats model.UploadStats

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(transaction_count), 0), COALESCE(SUM(file_size), 0)
		FROM upload_history
	`).Scan(&stats.TotalFiles, &stats.TotalTransactions, &stats.TotalSize)
	if err != nil {
		return nil, fmt.Errorf("failed to compute upload stats: %w", err)
	}

	if stats.TotalFiles == 0 {
		return &stats, nil
	}

	// MIN/MAX aggregates lose the column's declared type under this driver
	// and scan back as bare strings, so the bounds come from ordered reads.
	err = s.db.QueryRowContext(ctx, `
		SELECT upload_date FROM upload_history ORDER BY upload_date ASC LIMIT 1
	`).Scan(&stats.OldestUpload)
	if err != nil {
		return nil, fmt.Errorf("failed to read oldest upload date: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT upload_date FROM upload_history ORDER BY upload_date DESC LIMIT 1
	`).Scan(&stats.NewestUpload)
	if err != nil {
		return nil, fmt.Errorf("failed to read newest upload date: %w", err)
	}

	stats.AverageTransactionsPerFile = int(math.Round(float64(stats.TotalTransactions) / float64(stats.TotalFiles)))

	return &stats, nil
}

func scanUpload(row scannable) (*model.UploadRecord, error) {
	var record model.UploadRecord
	var year sql.NullInt64

	err := row.Scan(
		&record.ID,
		&record.FileName,
		&record.FileData,
		&record.FileSize,
		&record.TransactionCount,
		&year,
		&record.UploadDate,
		&record.Summary.TotalIncome,
		&record.Summary.TotalExpenses,
		&record.Summary.NetBalance,
		&record.Summary.IncomeCount,
		&record.Summary.ExpenseCount,
	)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		record.Year = int(year.Int64)
	}

	return &record, nil
}
