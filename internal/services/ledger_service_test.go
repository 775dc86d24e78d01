package services

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/core"
)

func newTestLedger(store *memStore, events EventPublisher) *LedgerService {
	balance := NewBalanceService(store)
	resolver := NewCategoryResolver(store)
	return NewLedgerService(store, balance, resolver, events)
}

func TestCreateIncome(t *testing.T) {
	store := newMemStore()
	events := &memEvents{}
	ledger := newTestLedger(store, events)
	ctx := context.Background()

	created, err := ledger.Create(ctx, CreateTransaction{
		Title:    "Freelance",
		Value:    core.Money{Cents: 500000},
		Type:     core.Income,
		Category: "Salary",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Category.Title != "Salary" {
		t.Fatalf("unexpected transaction %+v", created)
	}

	_, bal, err := NewBalanceService(store).Balance(ctx)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Total.Cents != 500000 {
		t.Fatalf("expected total 500000, got %d", bal.Total.Cents)
	}
	if len(events.ops) != 1 || events.ops[0] != EventTransactionCreated {
		t.Fatalf("expected created event, got %v", events.ops)
	}
}

func TestCreateOutcomeWithinFunds(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	if _, err := ledger.Create(ctx, CreateTransaction{
		Title: "Salary", Value: core.Money{Cents: 500000}, Type: core.Income, Category: "Salary",
	}); err != nil {
		t.Fatalf("seed income: %v", err)
	}

	if _, err := ledger.Create(ctx, CreateTransaction{
		Title: "Rent", Value: core.Money{Cents: 120000}, Type: core.Outcome, Category: "Housing",
	}); err != nil {
		t.Fatalf("create outcome: %v", err)
	}

	_, bal, _ := NewBalanceService(store).Balance(ctx)
	if bal.Total.Cents != 380000 {
		t.Fatalf("expected total 380000, got %d", bal.Total.Cents)
	}
}

func TestCreateOutcomeInsufficientFunds(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	if _, err := ledger.Create(ctx, CreateTransaction{
		Title: "Salary", Value: core.Money{Cents: 100}, Type: core.Income, Category: "Salary",
	}); err != nil {
		t.Fatalf("seed income: %v", err)
	}

	_, err := ledger.Create(ctx, CreateTransaction{
		Title: "TV", Value: core.Money{Cents: 101}, Type: core.Outcome, Category: "Shopping",
	})
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if store.transactionCount() != 1 {
		t.Fatalf("failed create must not mutate the ledger; got %d rows", store.transactionCount())
	}
	// Equal to the total is allowed: the rule is value > total
	if _, err := ledger.Create(ctx, CreateTransaction{
		Title: "TV", Value: core.Money{Cents: 100}, Type: core.Outcome, Category: "Shopping",
	}); err != nil {
		t.Fatalf("outcome equal to total should succeed: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	ledger := newTestLedger(newMemStore(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateTransaction
		want error
	}{
		{"bad type", CreateTransaction{Title: "x", Value: core.Money{Cents: 1}, Type: "transfer", Category: "c"}, core.ErrInvalidType},
		{"zero value", CreateTransaction{Title: "x", Value: core.Money{Cents: 0}, Type: core.Income, Category: "c"}, core.ErrInvalidAmount},
		{"negative value", CreateTransaction{Title: "x", Value: core.Money{Cents: -5}, Type: core.Income, Category: "c"}, core.ErrInvalidAmount},
		{"empty title", CreateTransaction{Title: " ", Value: core.Money{Cents: 1}, Type: core.Income, Category: "c"}, core.ErrEmptyTitle},
		{"empty category", CreateTransaction{Title: "x", Value: core.Money{Cents: 1}, Type: core.Income, Category: ""}, core.ErrEmptyCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ledger.Create(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	events := &memEvents{}
	ledger := newTestLedger(store, events)
	ctx := context.Background()

	created, err := ledger.Create(ctx, CreateTransaction{
		Title: "Salary", Value: core.Money{Cents: 100}, Type: core.Income, Category: "Salary",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := ledger.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.transactionCount() != 0 {
		t.Fatalf("expected empty ledger, got %d rows", store.transactionCount())
	}

	if err := ledger.Delete(ctx, created.ID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
	if got := events.ops[len(events.ops)-1]; got != EventTransactionDeleted {
		t.Fatalf("expected deleted event, got %q", got)
	}
}
