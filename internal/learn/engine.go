// Package learn implements the categorization learning store: training
// writes learned patterns, inference scores them against new descriptions.
package learn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/model"
	"github.com/kestrelfin/kestrel/internal/normalize"
	"github.com/kestrelfin/kestrel/internal/service"
)

// DefaultScoreThreshold is the minimum raw score a pattern must reach
// before its category is suggested.
const DefaultScoreThreshold = 40.0

// Scoring weights. The scan multiplies the accumulated weight by the
// pattern's confidence and a slow-growing usage boost.
const (
	exactMatchScore    = 100.0
	merchantEqualScore = 80.0
	merchantSubstring  = 60.0
	wordOverlapScore   = 50.0
)

// Engine answers training and inference requests against a pattern store.
type Engine struct {
	store     service.PatternStore
	threshold float64
}

// NewEngine creates an engine with the default suggestion threshold.
func NewEngine(store service.PatternStore) *Engine {
	return NewEngineWithThreshold(store, DefaultScoreThreshold)
}

// NewEngineWithThreshold creates an engine with a custom suggestion
// threshold. Non-positive thresholds fall back to the default.
func NewEngineWithThreshold(store service.PatternStore, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	return &Engine{
		store:     store,
		threshold: threshold,
	}
}

// RecordCategorization teaches the engine that description belongs to
// category. Re-training the same (merchant, category, normalized
// description) triple reconfirms the existing pattern: its usage count,
// confidence, and example list advance instead of creating a duplicate.
// Returns the pattern's id.
func (e *Engine) RecordCategorization(ctx context.Context, description, category string, amount float64) (string, error) {
	if description == "" {
		return "", fmt.Errorf("%w: description cannot be empty", common.ErrInvalidArgument)
	}
	if category == "" {
		return "", fmt.Errorf("%w: category cannot be empty", common.ErrInvalidArgument)
	}

	normalized := normalize.Normalize(description)
	merchant := normalize.ExtractMerchant(description)

	existing, err := e.store.FindPattern(ctx, merchant, category, normalized)
	switch {
	case err == nil:
		existing.UsageCount++
		existing.Confidence = model.ConfidenceForUsage(existing.UsageCount)
		existing.Description = description
		existing.LastUsed = time.Now()
		existing.AppendExample(description)

		updateErr := e.store.UpdatePattern(ctx, existing)
		if errors.Is(updateErr, common.ErrNotFound) {
			// Pattern deleted between find and update; treat as untrained.
			return e.createPattern(ctx, description, category, normalized, merchant, amount)
		}
		if updateErr != nil {
			return "", fmt.Errorf("failed to update pattern: %w", updateErr)
		}
		return existing.ID, nil

	case errors.Is(err, common.ErrNotFound):
		return e.createPattern(ctx, description, category, normalized, merchant, amount)

	default:
		return "", fmt.Errorf("failed to look up pattern: %w", err)
	}
}

func (e *Engine) createPattern(ctx context.Context, description, category, normalized, merchant string, amount float64) (string, error) {
	now := time.Now()
	pattern := &model.Pattern{
		Description:           description,
		NormalizedDescription: normalized,
		MerchantName:          merchant,
		Category:              category,
		Amount:                amount,
		UsageCount:            1,
		Confidence:            model.InitialConfidence,
		Examples:              []string{description},
		CreatedAt:             now,
		LastUsed:              now,
	}

	if err := e.store.CreatePattern(ctx, pattern); err != nil {
		return "", fmt.Errorf("failed to create pattern: %w", err)
	}
	return pattern.ID, nil
}

// SuggestCategory scans every stored pattern and returns the best guess
// for description, or nil when no pattern scores above the threshold.
// The scan is linear over the whole store; acceptable at the scale of a
// single user's history.
func (e *Engine) SuggestCategory(ctx context.Context, description string) (*model.Suggestion, error) {
	if description == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", common.ErrInvalidArgument)
	}

	patterns, err := e.store.ListPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}

	normalized := normalize.Normalize(description)
	merchant := normalize.ExtractMerchant(description)
	queryWords := normalize.SignificantWords(normalized)

	var best *model.Pattern
	bestScore := 0.0

	for i := range patterns {
		score := scorePattern(&patterns[i], normalized, merchant, queryWords)
		// Strict comparison keeps the first-seen pattern on exact ties.
		if score > bestScore {
			best = &patterns[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < e.threshold {
		return nil, nil
	}

	return &model.Suggestion{
		Category:     best.Category,
		Confidence:   best.Confidence,
		ExampleCount: best.UsageCount,
		MerchantName: best.MerchantName,
		Source:       model.SourceLearned,
	}, nil
}

// scorePattern computes the raw similarity score between a query and one
// stored pattern.
func scorePattern(pattern *model.Pattern, normalized, merchant string, queryWords []string) float64 {
	score := 0.0

	if pattern.NormalizedDescription == normalized && normalized != "" {
		score += exactMatchScore
	}

	switch {
	case pattern.MerchantName != "" && pattern.MerchantName == merchant:
		score += merchantEqualScore
	case pattern.MerchantName != "" && merchant != "" &&
		(strings.Contains(pattern.MerchantName, merchant) || strings.Contains(merchant, pattern.MerchantName)):
		score += merchantSubstring
	}

	score += wordOverlapScore * overlapRatio(queryWords, normalize.SignificantWords(pattern.NormalizedDescription))

	score *= pattern.Confidence
	score *= math.Log10(float64(pattern.UsageCount)+1) + 1

	return score
}

// overlapRatio is |common words| / max(|a|, |b|), 0 when either is empty.
func overlapRatio(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(a))
	for _, w := range a {
		seen[w] = true
	}

	shared := 0
	for _, w := range b {
		if seen[w] {
			shared++
			seen[w] = false
		}
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(shared) / float64(longest)
}
