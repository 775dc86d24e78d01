package worker

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/amqp"
	"ledger/internal/core"
)

type fakeStore struct {
	txs       []core.Transaction
	snapshots []core.Balance
	triggers  []string
}

func (f *fakeStore) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	return f.txs, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	for _, t := range f.txs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

func (f *fakeStore) InsertBalanceSnapshot(_ context.Context, b core.Balance, trigger string) error {
	f.snapshots = append(f.snapshots, b)
	f.triggers = append(f.triggers, trigger)
	return nil
}

type fakeMirror struct {
	appended []int64
	fail     error
}

func (f *fakeMirror) Append(_ context.Context, t core.Transaction) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.appended = append(f.appended, t.ID)
	return "Transactions!A2:E2", nil
}

func TestHandleLedgerEventRecordsSnapshot(t *testing.T) {
	store := &fakeStore{txs: []core.Transaction{
		{ID: 1, Title: "Salary", Value: core.Money{Cents: 500000}, Type: core.Income, Category: core.Category{ID: 1, Title: "Salary"}},
		{ID: 2, Title: "Rent", Value: core.Money{Cents: 120000}, Type: core.Outcome, Category: core.Category{ID: 2, Title: "Housing"}},
	}}
	w := NewSnapshotWorker(store, nil)

	msg := amqp.NewLedgerEventMessage("transaction.deleted", 9, 1)
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(store.snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(store.snapshots))
	}
	if store.snapshots[0].Total.Cents != 380000 {
		t.Fatalf("expected total 380000, got %d", store.snapshots[0].Total.Cents)
	}
	if store.triggers[0] != "transaction.deleted" {
		t.Fatalf("expected trigger from event op, got %q", store.triggers[0])
	}
}

func TestHandleLedgerEventMirrorsCreated(t *testing.T) {
	store := &fakeStore{txs: []core.Transaction{
		{ID: 7, Title: "Coffee", Value: core.Money{Cents: 300}, Type: core.Outcome, Category: core.Category{ID: 1, Title: "Food"}},
	}}
	mirror := &fakeMirror{}
	w := NewSnapshotWorker(store, mirror)

	msg := amqp.NewLedgerEventMessage("transaction.created", 7, 1)
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(mirror.appended) != 1 || mirror.appended[0] != 7 {
		t.Fatalf("expected transaction 7 mirrored, got %v", mirror.appended)
	}
}

func TestHandleLedgerEventMirrorSkipsGoneTransaction(t *testing.T) {
	store := &fakeStore{}
	mirror := &fakeMirror{}
	w := NewSnapshotWorker(store, mirror)

	msg := amqp.NewLedgerEventMessage("transaction.created", 99, 1)
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("gone transaction should not fail the event: %v", err)
	}
	if len(mirror.appended) != 0 {
		t.Fatalf("nothing should be mirrored, got %v", mirror.appended)
	}
}

func TestHandleLedgerEventMirrorFailureRequeues(t *testing.T) {
	store := &fakeStore{txs: []core.Transaction{
		{ID: 1, Title: "Coffee", Value: core.Money{Cents: 300}, Type: core.Outcome, Category: core.Category{ID: 1, Title: "Food"}},
	}}
	mirror := &fakeMirror{fail: errors.New("quota exceeded")}
	w := NewSnapshotWorker(store, mirror)

	msg := amqp.NewLedgerEventMessage("transaction.created", 1, 1)
	if err := w.HandleLedgerEvent(context.Background(), msg); err == nil {
		t.Fatal("mirror failure must surface so the delivery is retried")
	}
}
