package services

import (
	"context"
	"io"

	"ledger/internal/core"
)

// Ports consumed by the ledger services. storage.SQLiteRepository satisfies
// the store interfaces; tests substitute in-memory fakes.
type (
	TransactionStore interface {
		// ListTransactions returns every transaction with its category
		// populated, in insertion order.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// InsertTransactions persists the batch atomically: either every
		// row is committed or none is.
		InsertTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
	}

	CategoryStore interface {
		GetCategoryByTitle(ctx context.Context, title string) (core.Category, error)
		GetCategoriesByTitles(ctx context.Context, titles []string) ([]core.Category, error)
		InsertCategory(ctx context.Context, title string) (core.Category, error)
		InsertCategories(ctx context.Context, titles []string) ([]core.Category, error)
	}

	// ArtifactStore abstracts the uploaded-file collaborator.
	ArtifactStore interface {
		Open(path string) (io.ReadCloser, error)
		Remove(path string) error
	}

	// EventPublisher emits ledger events after successful writes. A nil
	// publisher disables events; publish failures never fail the write.
	EventPublisher interface {
		PublishLedgerEvent(ctx context.Context, op string, transactionID int64, count int) error
	}
)
