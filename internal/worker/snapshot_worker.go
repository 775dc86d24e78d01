package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
)

// Store is the slice of persistence the snapshot worker needs.
type Store interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	InsertBalanceSnapshot(ctx context.Context, b core.Balance, trigger string) error
}

// TransactionMirror appends a committed transaction to an external sheet.
type TransactionMirror interface {
	Append(ctx context.Context, t core.Transaction) (string, error)
}

// SnapshotWorker consumes ledger events and records a balance snapshot per
// event. When a mirror is configured, created transactions are also appended
// to it. Snapshots are telemetry; the ledger never reads them back.
type SnapshotWorker struct {
	store  Store
	mirror TransactionMirror
}

func NewSnapshotWorker(store Store, mirror TransactionMirror) *SnapshotWorker {
	return &SnapshotWorker{
		store:  store,
		mirror: mirror,
	}
}

// HandleLedgerEvent processes a single event from the queue.
func (w *SnapshotWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"op", msg.Op,
		"transaction_id", msg.TransactionID,
		"count", msg.Count)

	if err := w.RecordSnapshot(ctx, msg.Op); err != nil {
		return err
	}

	if msg.Op == "transaction.created" && w.mirror != nil {
		if err := w.mirrorTransaction(ctx, msg.TransactionID); err != nil {
			return err
		}
	}

	return nil
}

// RecordSnapshot recomputes the balance from the full transaction set and
// stores it tagged with the triggering operation.
func (w *SnapshotWorker) RecordSnapshot(ctx context.Context, trigger string) error {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	bal := core.ComputeBalance(txs)
	if err := w.store.InsertBalanceSnapshot(ctx, bal, trigger); err != nil {
		return fmt.Errorf("insert balance snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Balance snapshot recorded",
		"trigger", trigger,
		"income_cents", bal.Income.Cents,
		"outcome_cents", bal.Outcome.Cents,
		"total_cents", bal.Total.Cents)

	return nil
}

func (w *SnapshotWorker) mirrorTransaction(ctx context.Context, id int64) error {
	t, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrTransactionNotFound) {
		// Deleted between publish and consume; nothing to mirror.
		slog.WarnContext(ctx, "Transaction gone before mirroring", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", id, err)
	}

	ref, err := w.mirror.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("mirror transaction %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction mirrored", "id", id, "ref", ref)
	return nil
}
