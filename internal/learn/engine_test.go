package learn

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/model"
)

// mockPatternStore is an in-memory PatternStore for engine tests.
type mockPatternStore struct {
	patterns    []*model.Pattern
	nextID      int
	failUpdates bool
}

func (m *mockPatternStore) FindPattern(_ context.Context, merchantName, category, normalizedDescription string) (*model.Pattern, error) {
	for _, p := range m.patterns {
		if p.MerchantName == merchantName && p.Category == category && p.NormalizedDescription == normalizedDescription {
			cp := *p
			cp.Examples = append([]string(nil), p.Examples...)
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *mockPatternStore) CreatePattern(_ context.Context, pattern *model.Pattern) error {
	m.nextID++
	pattern.ID = fmt.Sprintf("pattern-%d", m.nextID)
	cp := *pattern
	m.patterns = append(m.patterns, &cp)
	return nil
}

func (m *mockPatternStore) UpdatePattern(_ context.Context, pattern *model.Pattern) error {
	if m.failUpdates {
		return common.ErrNotFound
	}
	for i, p := range m.patterns {
		if p.ID == pattern.ID {
			cp := *pattern
			m.patterns[i] = &cp
			return nil
		}
	}
	return common.ErrNotFound
}

func (m *mockPatternStore) ListPatterns(_ context.Context) ([]model.Pattern, error) {
	out := make([]model.Pattern, 0, len(m.patterns))
	for _, p := range m.patterns {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPatternStore) DeletePattern(_ context.Context, id string) error {
	for i, p := range m.patterns {
		if p.ID == id {
			m.patterns = append(m.patterns[:i], m.patterns[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func TestEngine_RecordCategorization_CreatesPattern(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	id, err := engine.RecordCategorization(ctx, "Starbucks #123", "Food", 4.50)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Len(t, store.patterns, 1)
	p := store.patterns[0]
	assert.Equal(t, "starbucks", p.NormalizedDescription)
	assert.Equal(t, "starbucks", p.MerchantName)
	assert.Equal(t, "Food", p.Category)
	assert.Equal(t, 1, p.UsageCount)
	assert.InDelta(t, 0.7, p.Confidence, 1e-9)
	assert.Equal(t, []string{"Starbucks #123"}, p.Examples)
}

func TestEngine_RecordCategorization_Idempotent(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	first, err := engine.RecordCategorization(ctx, "Starbucks #123", "Food", 4.50)
	require.NoError(t, err)
	second, err := engine.RecordCategorization(ctx, "Starbucks #123", "Food", 4.50)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, store.patterns, 1, "re-training the same triple must not create a duplicate")

	p := store.patterns[0]
	assert.Equal(t, 2, p.UsageCount)
	assert.InDelta(t, 0.80, p.Confidence, 1e-9)
	assert.Len(t, p.Examples, 2)
}

func TestEngine_RecordCategorization_DivergentCategories(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	foodID, err := engine.RecordCategorization(ctx, "Starbucks #123", "Food", 0)
	require.NoError(t, err)
	diningID, err := engine.RecordCategorization(ctx, "Starbucks #123", "Dining", 0)
	require.NoError(t, err)

	assert.NotEqual(t, foodID, diningID)
	require.Len(t, store.patterns, 2, "same description with a new category must create a separate pattern")
	assert.Equal(t, store.patterns[0].NormalizedDescription, store.patterns[1].NormalizedDescription)
	assert.Equal(t, store.patterns[0].MerchantName, store.patterns[1].MerchantName)
}

func TestEngine_RecordCategorization_ExampleBound(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := engine.RecordCategorization(ctx, "Starbucks #123", "Food", 0)
		require.NoError(t, err)
	}

	require.Len(t, store.patterns, 1)
	p := store.patterns[0]
	assert.Equal(t, 15, p.UsageCount)
	assert.Len(t, p.Examples, model.MaxPatternExamples)
	assert.InDelta(t, 0.95, p.Confidence, 1e-9)
}

func TestEngine_RecordCategorization_UpdateNotFoundFallsBackToCreate(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	_, err := engine.RecordCategorization(ctx, "Shell Gas Station", "Transport", 0)
	require.NoError(t, err)

	// Simulate the pattern vanishing between find and update.
	store.failUpdates = true
	id, err := engine.RecordCategorization(ctx, "Shell Gas Station", "Transport", 0)
	require.NoError(t, err, "a concurrent delete must fall back to create, not fail the training call")
	assert.NotEmpty(t, id)
	assert.Len(t, store.patterns, 2)
}

func TestEngine_RecordCategorization_Validation(t *testing.T) {
	engine := NewEngine(&mockPatternStore{})
	ctx := context.Background()

	_, err := engine.RecordCategorization(ctx, "", "Food", 0)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = engine.RecordCategorization(ctx, "Starbucks", "", 0)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestConfidenceForUsage_Monotonic(t *testing.T) {
	prev := 0.0
	for usage := 1; usage <= 20; usage++ {
		conf := model.ConfidenceForUsage(usage)
		assert.GreaterOrEqual(t, conf, prev, "confidence must never decrease with usage")
		assert.Greater(t, conf, 0.0)
		assert.LessOrEqual(t, conf, 1.0)
		prev = conf
	}

	assert.InDelta(t, 0.7, model.ConfidenceForUsage(1), 1e-9)
	assert.InDelta(t, 0.80, model.ConfidenceForUsage(2), 1e-9)
	assert.InDelta(t, 0.85, model.ConfidenceForUsage(3), 1e-9)
	assert.InDelta(t, 0.90, model.ConfidenceForUsage(5), 1e-9)
	assert.InDelta(t, 0.95, model.ConfidenceForUsage(10), 1e-9)
}

func TestEngine_SuggestCategory_ExactMatch(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	_, err := engine.RecordCategorization(ctx, "Shell Gas Station", "Transport", 0)
	require.NoError(t, err)

	suggestion, err := engine.SuggestCategory(ctx, "Shell Gas Station")
	require.NoError(t, err)
	require.NotNil(t, suggestion)

	assert.Equal(t, "Transport", suggestion.Category)
	assert.Equal(t, model.SourceLearned, suggestion.Source)
	assert.Equal(t, 1, suggestion.ExampleCount)
	assert.InDelta(t, 0.7, suggestion.Confidence, 1e-9)
	assert.Equal(t, "shell gas station", suggestion.MerchantName)
}

func TestEngine_SuggestCategory_MerchantSubstring(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	_, err := engine.RecordCategorization(ctx, "Starbucks #123", "Food", 0)
	require.NoError(t, err)

	suggestion, err := engine.SuggestCategory(ctx, "Starbucks Reserve #999")
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, "Food", suggestion.Category)
}

func TestEngine_SuggestCategory_BelowThreshold(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	// Low-confidence pattern sharing one word with the query still cannot
	// clear the floor.
	_, err := engine.RecordCategorization(ctx, "Corner Market Fresh Produce", "Groceries", 0)
	require.NoError(t, err)

	suggestion, err := engine.SuggestCategory(ctx, "Fresh Flowers Delivery Service")
	require.NoError(t, err)
	assert.Nil(t, suggestion)
}

func TestEngine_SuggestCategory_CustomThreshold(t *testing.T) {
	store := &mockPatternStore{}
	ctx := context.Background()

	_, err := NewEngine(store).RecordCategorization(ctx, "Shell Gas Station", "Transport", 0)
	require.NoError(t, err)

	// An exact match clears the default floor but not an extreme one.
	strict := NewEngineWithThreshold(store, 100000)
	suggestion, err := strict.SuggestCategory(ctx, "Shell Gas Station")
	require.NoError(t, err)
	assert.Nil(t, suggestion)

	lenient := NewEngineWithThreshold(store, 1)
	suggestion, err = lenient.SuggestCategory(ctx, "Shell Gas Station")
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, "Transport", suggestion.Category)

	// Non-positive thresholds fall back to the default.
	fallback := NewEngineWithThreshold(store, 0)
	assert.InDelta(t, DefaultScoreThreshold, fallback.threshold, 1e-9)
}

func TestEngine_SuggestCategory_NoPatterns(t *testing.T) {
	engine := NewEngine(&mockPatternStore{})

	suggestion, err := engine.SuggestCategory(context.Background(), "Anything At All")
	require.NoError(t, err)
	assert.Nil(t, suggestion)
}

func TestEngine_SuggestCategory_PrefersStrongerPattern(t *testing.T) {
	store := &mockPatternStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	// Heavily reconfirmed pattern should win over a single-use one when
	// both match by word overlap only.
	for i := 0; i < 6; i++ {
		_, err := engine.RecordCategorization(ctx, "City Gym Membership", "Fitness", 0)
		require.NoError(t, err)
	}
	_, err := engine.RecordCategorization(ctx, "City Parking Garage", "Transport", 0)
	require.NoError(t, err)

	suggestion, err := engine.SuggestCategory(ctx, "City Gym Membership")
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, "Fitness", suggestion.Category)
	assert.Equal(t, 6, suggestion.ExampleCount)
}

func TestSuggestKeyword(t *testing.T) {
	tests := []struct {
		name         string
		description  string
		wantCategory string
		wantNil      bool
	}{
		{name: "grocery keyword", description: "NEIGHBORHOOD GROCERY 0441", wantCategory: "Groceries"},
		{name: "multi-word keyword wins", description: "SHELL GAS STATION 99", wantCategory: "Transport"},
		{name: "salary keyword", description: "ACME CORP SALARY APRIL", wantCategory: "Income"},
		{name: "no keyword", description: "ZVX QQWF 123", wantNil: true},
		{name: "empty", description: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestKeyword(tt.description)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, model.SourceKeyword, got.Source)
		})
	}
}
