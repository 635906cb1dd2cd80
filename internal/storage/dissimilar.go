package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kestrelfin/kestrel/internal/model"
	"github.com/kestrelfin/kestrel/internal/normalize"
)

// pairKeySeparator joins the two normalized descriptions of a pair key.
const pairKeySeparator = "||"

// canonicalPair sorts the two raw descriptions lexicographically and
// builds the order-independent pair key from their normalized forms.
func canonicalPair(descA, descB string) (first, second, key string) {
	pair := []string{descA, descB}
	sort.Strings(pair)
	first, second = pair[0], pair[1]
	key = normalize.Normalize(first) + pairKeySeparator + normalize.Normalize(second)
	return first, second, key
}

// MarkDissimilar records that two descriptions are unrelated. Re-declaring
// an existing pair overwrites its timestamp rather than erroring.
func (s *SQLiteStorage) MarkDissimilar(ctx context.Context, descA, descB string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(descA, "descA"); err != nil {
		return err
	}
	if err := validateString(descB, "descB"); err != nil {
		return err
	}

	first, second, key := canonicalPair(descA, descB)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dissimilar_pairs (pair_key, description1, description2, timestamp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(pair_key) DO UPDATE SET
			description1 = excluded.description1,
			description2 = excluded.description2,
			timestamp = excluded.timestamp
	`, key, first, second, time.Now())

	if err != nil {
		return fmt.Errorf("failed to mark pair dissimilar: %w", err)
	}
	return nil
}

// AreDissimilar reports whether the two descriptions were previously
// declared unrelated, regardless of argument order.
func (s *SQLiteStorage) AreDissimilar(ctx context.Context, descA, descB string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(descA, "descA"); err != nil {
		return false, err
	}
	if err := validateString(descB, "descB"); err != nil {
		return false, err
	}

	_, _, key := canonicalPair(descA, descB)

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM dissimilar_pairs WHERE pair_key = ?)
	`, key).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("failed to check dissimilar pair: %w", err)
	}
	return exists, nil
}

// ListDissimilarPairs returns every declared pair, keyed order.
func (s *SQLiteStorage) ListDissimilarPairs(ctx context.Context) ([]model.DissimilarPair, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pair_key, description1, description2, timestamp
		FROM dissimilar_pairs
		ORDER BY pair_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dissimilar pairs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pairs []model.DissimilarPair
	for rows.Next() {
		var pair model.DissimilarPair
		if err := rows.Scan(&pair.PairKey, &pair.Description1, &pair.Description2, &pair.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan dissimilar pair: %w", err)
		}
		pairs = append(pairs, pair)
	}

	return pairs, rows.Err()
}
