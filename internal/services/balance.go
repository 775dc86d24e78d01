package services

import (
	"context"
	"fmt"

	"ledger/internal/core"
)

// BalanceService recomputes the ledger aggregate from a full joined scan on
// every call. Intended for ledger sizes where a full scan is acceptable.
type BalanceService struct {
	store TransactionStore
}

func NewBalanceService(store TransactionStore) *BalanceService {
	return &BalanceService{store: store}
}

// Balance returns every transaction together with the folded aggregate.
// Read-only; summation is exact integer cents.
func (s *BalanceService) Balance(ctx context.Context) ([]core.Transaction, core.Balance, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, core.Balance{}, fmt.Errorf("list transactions: %w", err)
	}
	return txs, core.ComputeBalance(txs), nil
}
