package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"ledger/internal/core"
)

// memStore is an in-memory stand-in for storage.SQLiteRepository. It mirrors
// the store's behavior including the unique index on category titles and the
// all-or-nothing batch insert.
type memStore struct {
	mu      sync.Mutex
	txs     []core.Transaction
	cats    []core.Category
	nextTx  int64
	nextCat int64

	failInsertBatch error
	failList        error
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	return append([]core.Transaction(nil), m.txs...), nil
}

func (m *memStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

func (m *memStore) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTx++
	t.ID = m.nextTx
	m.txs = append(m.txs, t)
	return t, nil
}

func (m *memStore) InsertTransactions(_ context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertBatch != nil {
		return nil, m.failInsertBatch
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		m.nextTx++
		t.ID = m.nextTx
		m.txs = append(m.txs, t)
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) DeleteTransaction(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.txs {
		if t.ID == id {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return core.ErrTransactionNotFound
}

func (m *memStore) GetCategoryByTitle(_ context.Context, title string) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cats {
		if c.Title == title {
			return c, nil
		}
	}
	return core.Category{}, core.ErrCategoryNotFound
}

func (m *memStore) GetCategoriesByTitles(_ context.Context, titles []string) ([]core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		want[t] = struct{}{}
	}
	var out []core.Category
	for _, c := range m.cats {
		if _, ok := want[c.Title]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) InsertCategory(_ context.Context, title string) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCategoryLocked(title)
}

func (m *memStore) InsertCategories(_ context.Context, titles []string) ([]core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Category, 0, len(titles))
	for _, title := range titles {
		c, err := m.insertCategoryLocked(title)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memStore) insertCategoryLocked(title string) (core.Category, error) {
	for _, c := range m.cats {
		if c.Title == title {
			return core.Category{}, fmt.Errorf("unique constraint violation on title %q", title)
		}
	}
	m.nextCat++
	c := core.Category{ID: m.nextCat, Title: title}
	m.cats = append(m.cats, c)
	return c, nil
}

func (m *memStore) categoryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cats)
}

func (m *memStore) transactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

// memArtifacts serves artifact contents from a map and records removals.
type memArtifacts struct {
	files   map[string]string
	removed []string
	failOpen error
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{files: map[string]string{}}
}

func (a *memArtifacts) Open(path string) (io.ReadCloser, error) {
	if a.failOpen != nil {
		return nil, a.failOpen
	}
	content, ok := a.files[path]
	if !ok {
		return nil, fmt.Errorf("artifact %q not found", path)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (a *memArtifacts) Remove(path string) error {
	a.removed = append(a.removed, path)
	delete(a.files, path)
	return nil
}

// memEvents records published ledger events.
type memEvents struct {
	ops []string
}

func (e *memEvents) PublishLedgerEvent(_ context.Context, op string, _ int64, _ int) error {
	e.ops = append(e.ops, op)
	return nil
}
