package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/model"
)

const patternColumns = `id, description, normalized_description, merchant_name,
	category, amount, usage_count, confidence, examples, created_at, last_used`

// FindPattern retrieves the pattern matching the (merchant, category,
// normalized description) triple. The unique index guarantees at most one
// such row. Returns common.ErrNotFound when no pattern matches.
func (s *SQLiteStorage) FindPattern(ctx context.Context, merchantName, category, normalizedDescription string) (*model.Pattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(merchantName, "merchantName"); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+patternColumns+`
		FROM patterns
		WHERE merchant_name = ? AND category = ? AND normalized_description = ?
	`, merchantName, category, normalizedDescription)

	pattern, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pattern: %w", err)
	}
	return pattern, nil
}

// CreatePattern inserts a new learned pattern, assigning an id if unset.
func (s *SQLiteStorage) CreatePattern(ctx context.Context, pattern *model.Pattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePattern(pattern); err != nil {
		return err
	}

	if pattern.ID == "" {
		pattern.ID = uuid.New().String()
	}
	if pattern.CreatedAt.IsZero() {
		pattern.CreatedAt = time.Now()
	}
	if pattern.LastUsed.IsZero() {
		pattern.LastUsed = pattern.CreatedAt
	}

	examplesJSON, err := json.Marshal(pattern.Examples)
	if err != nil {
		return fmt.Errorf("failed to marshal examples: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO patterns (`+patternColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, pattern.ID, pattern.Description, pattern.NormalizedDescription, pattern.MerchantName,
		pattern.Category, pattern.Amount, pattern.UsageCount, pattern.Confidence,
		string(examplesJSON), pattern.CreatedAt, pattern.LastUsed)

	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: pattern for this merchant, category and description already exists", common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create pattern: %w", err)
	}

	return nil
}

// UpdatePattern rewrites an existing pattern. Updating a pattern that has
// been deleted since it was read returns common.ErrNotFound; callers are
// expected to fall back to create semantics.
func (s *SQLiteStorage) UpdatePattern(ctx context.Context, pattern *model.Pattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePattern(pattern); err != nil {
		return err
	}
	if err := validateString(pattern.ID, "pattern.ID"); err != nil {
		return err
	}

	examplesJSON, err := json.Marshal(pattern.Examples)
	if err != nil {
		return fmt.Errorf("failed to marshal examples: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE patterns
		SET description = ?, normalized_description = ?, merchant_name = ?,
			category = ?, amount = ?, usage_count = ?, confidence = ?,
			examples = ?, last_used = ?
		WHERE id = ?
	`, pattern.Description, pattern.NormalizedDescription, pattern.MerchantName,
		pattern.Category, pattern.Amount, pattern.UsageCount, pattern.Confidence,
		string(examplesJSON), pattern.LastUsed, pattern.ID)

	if err != nil {
		return fmt.Errorf("failed to update pattern: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}

	return nil
}

// ListPatterns retrieves all learned patterns in stable insertion order.
// The scorer relies on deterministic iteration for first-seen tie breaks.
func (s *SQLiteStorage) ListPatterns(ctx context.Context) ([]model.Pattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+patternColumns+`
		FROM patterns
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.Pattern
	for rows.Next() {
		pattern, scanErr := scanPattern(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", scanErr)
		}
		patterns = append(patterns, *pattern)
	}

	return patterns, rows.Err()
}

// DeletePattern removes a pattern by id. Deleting a nonexistent id
// returns common.ErrNotFound.
func (s *SQLiteStorage) DeletePattern(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}

	return nil
}

// scannable is satisfied by *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanPattern(row scannable) (*model.Pattern, error) {
	var pattern model.Pattern
	var examplesJSON sql.NullString

	err := row.Scan(
		&pattern.ID,
		&pattern.Description,
		&pattern.NormalizedDescription,
		&pattern.MerchantName,
		&pattern.Category,
		&pattern.Amount,
		&pattern.UsageCount,
		&pattern.Confidence,
		&examplesJSON,
		&pattern.CreatedAt,
		&pattern.LastUsed,
	)
	if err != nil {
		return nil, err
	}

	if examplesJSON.Valid && examplesJSON.String != "" {
		if err := json.Unmarshal([]byte(examplesJSON.String), &pattern.Examples); err != nil {
			return nil, fmt.Errorf("failed to unmarshal examples: %w", err)
		}
	}

	return &pattern, nil
}
