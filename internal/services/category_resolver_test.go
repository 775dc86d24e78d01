package services

import (
	"context"
	"testing"
)

func TestResolveOrCreate(t *testing.T) {
	store := newMemStore()
	resolver := NewCategoryResolver(store)
	ctx := context.Background()

	first, err := resolver.ResolveOrCreate(ctx, "Food")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.ID == 0 || first.Title != "Food" {
		t.Fatalf("unexpected category %+v", first)
	}

	again, err := resolver.ResolveOrCreate(ctx, "Food")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if again != first {
		t.Fatalf("expected same record, got %+v and %+v", first, again)
	}
	if store.categoryCount() != 1 {
		t.Fatalf("expected 1 category, got %d", store.categoryCount())
	}
}

func TestResolveOrCreateBatchDeduplicates(t *testing.T) {
	store := newMemStore()
	resolver := NewCategoryResolver(store)
	ctx := context.Background()

	got, err := resolver.ResolveOrCreateBatch(ctx, []string{"Food", "Food", "Transport"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 resolved names, got %d", len(got))
	}
	if store.categoryCount() != 2 {
		t.Fatalf("expected exactly 2 category rows, got %d", store.categoryCount())
	}
	if got["Food"].Title != "Food" || got["Transport"].Title != "Transport" {
		t.Fatalf("unexpected mapping %+v", got)
	}
}

func TestResolveOrCreateBatchReusesExisting(t *testing.T) {
	store := newMemStore()
	resolver := NewCategoryResolver(store)
	ctx := context.Background()

	existing, err := resolver.ResolveOrCreate(ctx, "Housing")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := resolver.ResolveOrCreateBatch(ctx, []string{"Housing", "Salary"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if got["Housing"].ID != existing.ID {
		t.Fatalf("expected existing id %d, got %d", existing.ID, got["Housing"].ID)
	}
	if store.categoryCount() != 2 {
		t.Fatalf("expected 2 category rows, got %d", store.categoryCount())
	}

	// A second batch over the same names creates nothing new
	if _, err := resolver.ResolveOrCreateBatch(ctx, []string{"Housing", "Salary"}); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if store.categoryCount() != 2 {
		t.Fatalf("category dedup is global by title; got %d rows", store.categoryCount())
	}
}

func TestResolveOrCreateBatchEmpty(t *testing.T) {
	resolver := NewCategoryResolver(newMemStore())

	got, err := resolver.ResolveOrCreateBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mapping, got %+v", got)
	}
}
