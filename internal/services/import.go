package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ledger/internal/core"
)

// ImportError wraps any failure during a bulk import. Nothing is committed
// when an import fails; the source artifact is left to the caller.
type ImportError struct {
	err error
}

func (e *ImportError) Error() string {
	return "import transactions: " + e.err.Error()
}

func (e *ImportError) Unwrap() error {
	return e.err
}

// csvRow is one accumulated input row, kept in arrival order.
type csvRow struct {
	title    string
	typ      core.TransactionType
	value    core.Money
	category string
}

// Importer streams a delimited-text artifact and commits the parsed
// transactions in one batch. Rows are consumed strictly in order; category
// resolution happens once, after the whole stream is drained, so the
// complete name set is known before any round trip.
type Importer struct {
	store     TransactionStore
	resolver  *CategoryResolver
	balance   *BalanceService
	artifacts ArtifactStore

	// EnforceOverdraft applies the single-create overdraft rule to the
	// batch, replaying rows in order against the pre-import balance. Off by
	// default: imported outcomes are accepted unconditionally.
	EnforceOverdraft bool

	events EventPublisher
}

func NewImporter(store TransactionStore, resolver *CategoryResolver, balance *BalanceService, artifacts ArtifactStore, events EventPublisher) *Importer {
	return &Importer{
		store:     store,
		resolver:  resolver,
		balance:   balance,
		artifacts: artifacts,
		events:    events,
	}
}

// ImportFile reads the CSV artifact at path, persists every valid row in one
// batch, and removes the artifact after a successful commit. The returned
// transactions are in input row order. On any failure nothing is persisted.
func (s *Importer) ImportFile(ctx context.Context, path string) ([]core.Transaction, error) {
	f, err := s.artifacts.Open(path)
	if err != nil {
		return nil, &ImportError{err: fmt.Errorf("open artifact: %w", err)}
	}
	defer f.Close()

	saved, err := s.importStream(ctx, f)
	if err != nil {
		return nil, err
	}

	if err := s.artifacts.Remove(path); err != nil {
		// The batch is committed; a leftover temp file is not a failure.
		slog.WarnContext(ctx, "Failed to remove import artifact", "path", path, "error", err)
	}

	if s.events != nil {
		if err := s.events.PublishLedgerEvent(ctx, EventImportCompleted, 0, len(saved)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish import event", "error", err)
		}
	}

	slog.InfoContext(ctx, "Import completed", "path", path, "count", len(saved))
	return saved, nil
}

func (s *Importer) importStream(ctx context.Context, src io.Reader) ([]core.Transaction, error) {
	rows, names, err := s.readRows(ctx, src)
	if err != nil {
		return nil, &ImportError{err: err}
	}

	categories, err := s.resolver.ResolveOrCreateBatch(ctx, names)
	if err != nil {
		return nil, &ImportError{err: fmt.Errorf("resolve categories: %w", err)}
	}

	if s.EnforceOverdraft {
		if err := s.checkOverdraft(ctx, rows); err != nil {
			return nil, &ImportError{err: err}
		}
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		cat, ok := categories[row.category]
		if !ok {
			// The batch guarantee makes this unreachable; treat it as an
			// invariant violation and fail the whole import.
			return nil, &ImportError{err: fmt.Errorf("category %q did not resolve", row.category)}
		}
		txs = append(txs, core.Transaction{
			Title:    row.title,
			Value:    row.value,
			Type:     row.typ,
			Category: cat,
		})
	}

	saved, err := s.store.InsertTransactions(ctx, txs)
	if err != nil {
		return nil, &ImportError{err: fmt.Errorf("save transactions: %w", err)}
	}
	return saved, nil
}

// readRows drains the stream, buffering valid rows and their category names.
// The first row is a header and always skipped. Rows missing title, type, or
// value are treated as blank/malformed lines and skipped silently.
func (s *Importer) readRows(ctx context.Context, src io.Reader) ([]csvRow, []string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	var rows []csvRow
	var names []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("import cancelled: %w", err)
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}

		row, ok := parseRow(record)
		if !ok {
			slog.DebugContext(ctx, "Skipping malformed import row", "cells", len(record))
			continue
		}
		rows = append(rows, row)
		names = append(names, row.category)
	}

	return rows, names, nil
}

// parseRow trims the cells of a [title, type, value, category] record and
// reports whether the row is usable.
func parseRow(record []string) (csvRow, bool) {
	cells := make([]string, 4)
	for i := 0; i < len(record) && i < 4; i++ {
		cells[i] = strings.TrimSpace(record[i])
	}
	title, typStr, valueStr, category := cells[0], cells[1], cells[2], cells[3]

	if title == "" || typStr == "" || valueStr == "" || category == "" {
		return csvRow{}, false
	}
	typ, err := core.ParseTransactionType(typStr)
	if err != nil {
		return csvRow{}, false
	}
	cents, err := core.ParseDecimalToCents(valueStr)
	if err != nil {
		return csvRow{}, false
	}

	return csvRow{
		title:    title,
		typ:      typ,
		value:    core.Money{Cents: cents},
		category: category,
	}, true
}

// checkOverdraft replays the batch in row order against the current balance
// and rejects the import before anything is persisted if any outcome would
// drive the running total negative.
func (s *Importer) checkOverdraft(ctx context.Context, rows []csvRow) error {
	_, bal, err := s.balance.Balance(ctx)
	if err != nil {
		return fmt.Errorf("compute balance: %w", err)
	}

	running := bal.Total.Cents
	for _, row := range rows {
		switch row.typ {
		case core.Income:
			running += row.value.Cents
		case core.Outcome:
			if row.value.Cents > running {
				return fmt.Errorf("row %q: %w", row.title, core.ErrInsufficientFunds)
			}
			running -= row.value.Cents
		}
	}
	return nil
}
