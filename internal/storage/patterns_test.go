package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/model"
)

func TestSQLiteStorage_CreateAndFindPattern(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	pattern := makeTestPattern("starbucks", "Food")
	pattern.Description = "Starbucks #123"
	pattern.Examples = []string{"Starbucks #123"}
	pattern.Amount = 4.50

	if err := store.CreatePattern(ctx, pattern); err != nil {
		t.Fatalf("Failed to create pattern: %v", err)
	}
	if pattern.ID == "" {
		t.Fatal("CreatePattern did not assign an ID")
	}

	found, err := store.FindPattern(ctx, "starbucks", "Food", "starbucks")
	if err != nil {
		t.Fatalf("Failed to find pattern: %v", err)
	}
	if found.ID != pattern.ID {
		t.Errorf("Found wrong pattern: got %s, want %s", found.ID, pattern.ID)
	}
	if found.Description != "Starbucks #123" {
		t.Errorf("Description = %q, want %q", found.Description, "Starbucks #123")
	}
	if len(found.Examples) != 1 || found.Examples[0] != "Starbucks #123" {
		t.Errorf("Examples = %v, want [Starbucks #123]", found.Examples)
	}
}

func TestSQLiteStorage_FindPattern_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.FindPattern(context.Background(), "nobody", "Nothing", "nobody")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_PatternIdentityUnique(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.CreatePattern(ctx, makeTestPattern("starbucks", "Food")); err != nil {
		t.Fatalf("Failed to create pattern: %v", err)
	}

	// Same triple must be rejected by the unique index.
	if err := store.CreatePattern(ctx, makeTestPattern("starbucks", "Food")); !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("Expected ErrDuplicateEntry for duplicate triple, got %v", err)
	}

	// Same merchant and description with a different category is allowed.
	if err := store.CreatePattern(ctx, makeTestPattern("starbucks", "Dining")); err != nil {
		t.Errorf("Different category should create a separate pattern: %v", err)
	}
}

func TestSQLiteStorage_UpdatePattern(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	pattern := makeTestPattern("shell gas station", "Transport")
	if err := store.CreatePattern(ctx, pattern); err != nil {
		t.Fatalf("Failed to create pattern: %v", err)
	}

	pattern.UsageCount = 3
	pattern.Confidence = model.ConfidenceForUsage(3)
	pattern.LastUsed = time.Now().Add(time.Hour)
	pattern.AppendExample("Shell Gas Station 04/21")

	if err := store.UpdatePattern(ctx, pattern); err != nil {
		t.Fatalf("Failed to update pattern: %v", err)
	}

	found, err := store.FindPattern(ctx, "shell gas station", "Transport", "shell gas station")
	if err != nil {
		t.Fatalf("Failed to find pattern: %v", err)
	}
	if found.UsageCount != 3 {
		t.Errorf("UsageCount = %d, want 3", found.UsageCount)
	}
	if found.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", found.Confidence)
	}
	if len(found.Examples) != 2 {
		t.Errorf("Examples length = %d, want 2", len(found.Examples))
	}
}

func TestSQLiteStorage_UpdatePattern_Deleted(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	pattern := makeTestPattern("netflix", "Entertainment")
	if err := store.CreatePattern(ctx, pattern); err != nil {
		t.Fatalf("Failed to create pattern: %v", err)
	}
	if err := store.DeletePattern(ctx, pattern.ID); err != nil {
		t.Fatalf("Failed to delete pattern: %v", err)
	}

	err := store.UpdatePattern(ctx, pattern)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Updating a deleted pattern: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_ListPatterns_StableOrder(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now()
	merchants := []string{"alpha", "beta", "gamma"}
	for i, m := range merchants {
		p := makeTestPattern(m, "Misc")
		p.CreatedAt = base.Add(time.Duration(i) * time.Second)
		p.LastUsed = p.CreatedAt
		if err := store.CreatePattern(ctx, p); err != nil {
			t.Fatalf("Failed to create pattern %s: %v", m, err)
		}
	}

	patterns, err := store.ListPatterns(ctx)
	if err != nil {
		t.Fatalf("Failed to list patterns: %v", err)
	}
	if len(patterns) != 3 {
		t.Fatalf("Got %d patterns, want 3", len(patterns))
	}
	for i, m := range merchants {
		if patterns[i].MerchantName != m {
			t.Errorf("patterns[%d] = %s, want %s", i, patterns[i].MerchantName, m)
		}
	}
}

func TestSQLiteStorage_CreatePattern_Invalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		mutate func(*model.Pattern)
		name   string
	}{
		{name: "missing merchant", mutate: func(p *model.Pattern) { p.MerchantName = "" }},
		{name: "missing category", mutate: func(p *model.Pattern) { p.Category = "" }},
		{name: "zero usage count", mutate: func(p *model.Pattern) { p.UsageCount = 0 }},
		{name: "confidence out of range", mutate: func(p *model.Pattern) { p.Confidence = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := makeTestPattern("merchant", "Category")
			tt.mutate(p)
			if err := store.CreatePattern(ctx, p); !errors.Is(err, common.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}
