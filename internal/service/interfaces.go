// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/kestrelfin/kestrel/internal/model"
)

// TransactionFilter defines filtering options for transaction record queries.
type TransactionFilter struct {
	UploadID string
	Limit    int
}

// PatternStore is the persistence contract for learned categorization
// patterns.
type PatternStore interface {
	// FindPattern returns the pattern matching the (merchant, category,
	// normalized description) triple, or common.ErrNotFound.
	FindPattern(ctx context.Context, merchantName, category, normalizedDescription string) (*model.Pattern, error)
	CreatePattern(ctx context.Context, pattern *model.Pattern) error
	// UpdatePattern rewrites a pattern in place. Updating a pattern that
	// has been deleted since it was read returns common.ErrNotFound.
	UpdatePattern(ctx context.Context, pattern *model.Pattern) error
	ListPatterns(ctx context.Context) ([]model.Pattern, error)
	DeletePattern(ctx context.Context, id string) error
}

// DissimilarityRegistry records description pairs a user has declared
// unrelated. The registry is a fact store for review surfaces; the match
// scorer never consults it.
type DissimilarityRegistry interface {
	MarkDissimilar(ctx context.Context, descA, descB string) error
	AreDissimilar(ctx context.Context, descA, descB string) (bool, error)
	ListDissimilarPairs(ctx context.Context) ([]model.DissimilarPair, error)
}

// UploadHistoryStore is the persistent log of processed statement files.
type UploadHistoryStore interface {
	RecordUpload(ctx context.Context, record *model.UploadRecord) (string, error)
	ListUploads(ctx context.Context, limit int) ([]model.UploadRecord, error)
	GetUpload(ctx context.Context, id string) (*model.UploadRecord, error)
	DeleteUpload(ctx context.Context, id string) error
	ClearUploads(ctx context.Context) error
	ComputeUploadStats(ctx context.Context) (*model.UploadStats, error)
}

// TransactionStore persists parsed statement rows.
type TransactionStore interface {
	SaveTransactionRecords(ctx context.Context, records []model.TransactionRecord) error
	ListTransactionRecords(ctx context.Context, filter TransactionFilter) ([]model.TransactionRecord, error)
	CountTransactionRecords(ctx context.Context) (int, error)
}

// Backup is the single structured document produced by ExportAll and
// consumed by ImportAll.
type Backup struct {
	ExportedAt         time.Time                 `json:"exportedAt"`
	Patterns           []model.Pattern           `json:"patterns"`
	TransactionRecords []model.TransactionRecord `json:"transactionRecords"`
	DissimilarPairs    []model.DissimilarPair    `json:"dissimilarPairs"`
	Uploads            []model.UploadRecord      `json:"uploads"`
	Version            int                       `json:"version"`
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	PatternStore
	DissimilarityRegistry
	UploadHistoryStore
	TransactionStore

	// ExportAll serializes every collection into one document.
	ExportAll(ctx context.Context) (*Backup, error)
	// ImportAll loads a backup document all-or-nothing, assigning fresh
	// identifiers to patterns and transaction records while preserving
	// dissimilar pair keys.
	ImportAll(ctx context.Context, backup *Backup) error

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
