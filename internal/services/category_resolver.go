package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/core"
)

// CategoryResolver maps category names to category records, creating missing
// ones lazily. Titles are the resolution key; the store's unique index on
// title is the real enforcement point against concurrent duplicates.
type CategoryResolver struct {
	store CategoryStore
}

func NewCategoryResolver(store CategoryStore) *CategoryResolver {
	return &CategoryResolver{store: store}
}

// ResolveOrCreate looks up a category by exact title and creates it when
// absent. Single round trip per path; used by the one-transaction flow.
func (r *CategoryResolver) ResolveOrCreate(ctx context.Context, name string) (core.Category, error) {
	cat, err := r.store.GetCategoryByTitle(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, core.ErrCategoryNotFound) {
		return core.Category{}, fmt.Errorf("lookup category %q: %w", name, err)
	}

	created, err := r.store.InsertCategory(ctx, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category %q: %w", name, err)
	}
	return created, nil
}

// ResolveOrCreateBatch resolves a whole list of names against the store in
// one read plus one write. Duplicate names in the input resolve to the same
// record; no duplicate category rows are created within one invocation.
func (r *CategoryResolver) ResolveOrCreateBatch(ctx context.Context, names []string) (map[string]core.Category, error) {
	if len(names) == 0 {
		return map[string]core.Category{}, nil
	}

	// Deduplicate preserving first-seen order for the insert batch
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	existing, err := r.store.GetCategoriesByTitles(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	resolved := make(map[string]core.Category, len(unique))
	for _, c := range existing {
		resolved[c.Title] = c
	}

	var missing []string
	for _, name := range unique {
		if _, ok := resolved[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		created, err := r.store.InsertCategories(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("create categories: %w", err)
		}
		for _, c := range created {
			resolved[c.Title] = c
		}
		slog.InfoContext(ctx, "Categories created for batch",
			"created", len(created),
			"resolved", len(resolved))
	}

	return resolved, nil
}
