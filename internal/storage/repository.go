package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistence collaborator for the ledger. All reads
// that return transactions join the category row so callers never need a
// second lookup.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `t.id, t.title, t.value_cents, t.type, c.id, c.title
	FROM transactions t
	INNER JOIN categories c ON c.id = t.category_id`

// ListTransactions returns every transaction with its category populated,
// in insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` ORDER BY t.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// GetTransaction returns a single transaction by id with its category
// populated. Returns core.ErrTransactionNotFound when the id does not exist.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// InsertTransaction persists a single transaction and returns it with the
// generated id.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (title, value_cents, type, category_id) VALUES (?, ?, ?, ?)`,
		t.Title, t.Value.Cents, string(t.Type), t.Category.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"title", t.Title,
		"type", string(t.Type),
		"value_cents", t.Value.Cents,
		"category", t.Category.Title)

	return t, nil
}

// InsertTransactions persists a batch inside one SQL transaction. Either
// every row is committed or none is.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx,
		`INSERT INTO transactions (title, value_cents, type, category_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		res, err := stmt.ExecContext(ctx, t.Title, t.Value.Cents, string(t.Type), t.Category.ID)
		if err != nil {
			return nil, fmt.Errorf("insert transaction %q: %w", t.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("transaction id: %w", err)
		}
		t.ID = id
		out = append(out, t)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transaction batch saved", "count", len(out))
	return out, nil
}

// DeleteTransaction removes exactly one row. Returns
// core.ErrTransactionNotFound when the id does not exist.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

// GetCategoryByTitle looks up a category by exact title match.
func (r *SQLiteRepository) GetCategoryByTitle(ctx context.Context, title string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title FROM categories WHERE title = ?`, title).Scan(&c.ID, &c.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetCategoriesByTitles fetches every category whose title is in the given
// set using a single IN query.
func (r *SQLiteRepository) GetCategoriesByTitles(ctx context.Context, titles []string) ([]core.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(titles)), ", ")
	args := make([]any, len(titles))
	for i, t := range titles {
		args[i] = t
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title FROM categories WHERE title IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// InsertCategory creates one category and returns it with the generated id.
func (r *SQLiteRepository) InsertCategory(ctx context.Context, title string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (title) VALUES (?)`, title)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", id, "title", title)
	return core.Category{ID: id, Title: title}, nil
}

// InsertCategories creates a batch of categories inside one SQL transaction.
func (r *SQLiteRepository) InsertCategories(ctx context.Context, titles []string) ([]core.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `INSERT INTO categories (title) VALUES (?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	out := make([]core.Category, 0, len(titles))
	for _, title := range titles {
		res, err := stmt.ExecContext(ctx, title)
		if err != nil {
			return nil, fmt.Errorf("insert category %q: %w", title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("category id: %w", err)
		}
		out = append(out, core.Category{ID: id, Title: title})
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit categories: %w", err)
	}

	slog.InfoContext(ctx, "Category batch saved", "count", len(out))
	return out, nil
}

// InsertBalanceSnapshot records a point-in-time balance with the operation
// that triggered it. Snapshots are worker telemetry; ledger reads never
// consult them.
func (r *SQLiteRepository) InsertBalanceSnapshot(ctx context.Context, b core.Balance, trigger string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO balance_snapshots (income_cents, outcome_cents, total_cents, trigger_op) VALUES (?, ?, ?, ?)`,
		b.Income.Cents, b.Outcome.Cents, b.Total.Cents, trigger)
	if err != nil {
		return fmt.Errorf("insert balance snapshot: %w", err)
	}
	return nil
}

// LatestBalanceSnapshot returns the most recent snapshot, or
// sql.ErrNoRows wrapped when none has been recorded yet.
func (r *SQLiteRepository) LatestBalanceSnapshot(ctx context.Context) (core.Balance, string, error) {
	var b core.Balance
	var trigger string
	err := r.db.QueryRowContext(ctx,
		`SELECT income_cents, outcome_cents, total_cents, trigger_op
		 FROM balance_snapshots ORDER BY id DESC LIMIT 1`).
		Scan(&b.Income.Cents, &b.Outcome.Cents, &b.Total.Cents, &trigger)
	if err != nil {
		return core.Balance{}, "", fmt.Errorf("latest balance snapshot: %w", err)
	}
	return b, trigger, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ string
	if err := row.Scan(&t.ID, &t.Title, &t.Value.Cents, &typ, &t.Category.ID, &t.Category.Title); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	return t, nil
}
