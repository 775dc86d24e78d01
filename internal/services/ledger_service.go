package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ledger/internal/core"
)

// Ledger event operations published after successful writes.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
	EventImportCompleted    = "import.completed"
)

// CreateTransaction is the input for a single-transaction create.
type CreateTransaction struct {
	Title    string
	Value    core.Money
	Type     core.TransactionType
	Category string
}

// LedgerService performs single-transaction create and delete, enforcing the
// overdraft rule against the last observed balance. The check and the insert
// are not atomically linked against concurrent writers; callers needing that
// must wrap the call in a serializable store transaction.
type LedgerService struct {
	store    TransactionStore
	balance  *BalanceService
	resolver *CategoryResolver
	events   EventPublisher
}

func NewLedgerService(store TransactionStore, balance *BalanceService, resolver *CategoryResolver, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:    store,
		balance:  balance,
		resolver: resolver,
		events:   events,
	}
}

// Create validates the input, checks the overdraft rule for outcome entries,
// resolves the category, and persists the transaction. No mutation happens
// on any failure.
func (s *LedgerService) Create(ctx context.Context, in CreateTransaction) (core.Transaction, error) {
	if !in.Type.Valid() {
		return core.Transaction{}, core.ErrInvalidType
	}
	if err := in.Value.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return core.Transaction{}, core.ErrEmptyTitle
	}
	if strings.TrimSpace(in.Category) == "" {
		return core.Transaction{}, core.ErrEmptyCategory
	}

	_, bal, err := s.balance.Balance(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("compute balance: %w", err)
	}
	if in.Type == core.Outcome && in.Value.Cents > bal.Total.Cents {
		return core.Transaction{}, core.ErrInsufficientFunds
	}

	cat, err := s.resolver.ResolveOrCreate(ctx, in.Category)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("resolve category: %w", err)
	}

	created, err := s.store.InsertTransaction(ctx, core.Transaction{
		Title:    in.Title,
		Value:    in.Value,
		Type:     in.Type,
		Category: cat,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, EventTransactionCreated, created.ID, 1)
	return created, nil
}

// Delete removes exactly one transaction. No balance re-check: deleting an
// outcome can only increase the total.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.GetTransaction(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, EventTransactionDeleted, id, 1)
	return nil
}

// publish emits a ledger event. Events are best-effort: the write already
// succeeded, so failures are logged and swallowed.
func (s *LedgerService) publish(ctx context.Context, op string, id int64, count int) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, op, id, count); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"op", op, "id", id, "error", err)
	}
}
