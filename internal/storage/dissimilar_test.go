package storage

import (
	"context"
	"testing"
)

func TestSQLiteStorage_Dissimilar_Symmetric(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.MarkDissimilar(ctx, "Shell Gas Station", "Shell Seafood Grill"); err != nil {
		t.Fatalf("Failed to mark dissimilar: %v", err)
	}

	// Order of arguments must not matter.
	got, err := store.AreDissimilar(ctx, "Shell Seafood Grill", "Shell Gas Station")
	if err != nil {
		t.Fatalf("Failed to check dissimilar: %v", err)
	}
	if !got {
		t.Error("AreDissimilar(B, A) = false after MarkDissimilar(A, B)")
	}

	got, err = store.AreDissimilar(ctx, "Shell Gas Station", "Shell Seafood Grill")
	if err != nil {
		t.Fatalf("Failed to check dissimilar: %v", err)
	}
	if !got {
		t.Error("AreDissimilar(A, B) = false after MarkDissimilar(A, B)")
	}
}

func TestSQLiteStorage_Dissimilar_Unknown(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	got, err := store.AreDissimilar(context.Background(), "Alpha", "Beta")
	if err != nil {
		t.Fatalf("Failed to check dissimilar: %v", err)
	}
	if got {
		t.Error("AreDissimilar returned true for an undeclared pair")
	}
}

func TestSQLiteStorage_Dissimilar_RedeclareOverwrites(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.MarkDissimilar(ctx, "Alpha Store", "Beta Store"); err != nil {
		t.Fatalf("Failed to mark dissimilar: %v", err)
	}
	first, err := store.ListDissimilarPairs(ctx)
	if err != nil {
		t.Fatalf("Failed to list pairs: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("Got %d pairs, want 1", len(first))
	}

	// Re-declaring in reverse order must overwrite, not duplicate.
	if err := store.MarkDissimilar(ctx, "Beta Store", "Alpha Store"); err != nil {
		t.Fatalf("Failed to re-mark dissimilar: %v", err)
	}
	second, err := store.ListDissimilarPairs(ctx)
	if err != nil {
		t.Fatalf("Failed to list pairs: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("Got %d pairs after redeclare, want 1", len(second))
	}
	if second[0].PairKey != first[0].PairKey {
		t.Errorf("Pair key changed on redeclare: %s vs %s", second[0].PairKey, first[0].PairKey)
	}
	if second[0].Timestamp.Before(first[0].Timestamp) {
		t.Error("Redeclare did not advance the timestamp")
	}
}

func TestSQLiteStorage_Dissimilar_RawOrderCanonical(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.MarkDissimilar(ctx, "zeta", "alpha"); err != nil {
		t.Fatalf("Failed to mark dissimilar: %v", err)
	}

	pairs, err := store.ListDissimilarPairs(ctx)
	if err != nil {
		t.Fatalf("Failed to list pairs: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("Got %d pairs, want 1", len(pairs))
	}
	// Raw descriptions are stored in lexicographic order.
	if pairs[0].Description1 != "alpha" || pairs[0].Description2 != "zeta" {
		t.Errorf("Pair stored as (%q, %q), want (alpha, zeta)", pairs[0].Description1, pairs[0].Description2)
	}
}
