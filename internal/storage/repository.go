// Package storage implements the expense store on SQLite. It owns persistence
// of raw expense rows and categories; the insights aggregator consumes it
// through the read-only fetch below.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendsight/internal/core"
	applog "spendsight/internal/log"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// nullable maps an empty string to NULL so absent optional fields stay absent.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys must be on for ON DELETE SET NULL to fire.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

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

// Ping verifies the database connection, used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FetchExpenses implements insights.Store. It returns raw rows for the owner
// inside the window, ascending by timestamp, joined with the category name.
// Nullable columns come back as zero values; cleaning is the caller's job.
func (r *SQLiteRepository) FetchExpenses(ctx context.Context, ownerID string, window core.DateWindow) ([]core.ExpenseRecord, error) {
	const q = `
		SELECT e.owner_id, COALESCE(e.amount, ''), e.occurred_at,
		       COALESCE(e.payment_method, ''), COALESCE(c.name, '')
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.owner_id = ? AND e.occurred_at >= ? AND e.occurred_at <= ?
		ORDER BY e.occurred_at ASC`

	rows, err := r.db.QueryContext(ctx, q, ownerID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var records []core.ExpenseRecord
	for rows.Next() {
		var rec core.ExpenseRecord
		var occurredAt sql.NullTime
		if err := rows.Scan(&rec.OwnerID, &rec.Amount, &occurredAt, &rec.PaymentMethod, &rec.CategoryName); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		if occurredAt.Valid {
			rec.OccurredAt = occurredAt.Time.UTC()
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}

	return records, nil
}

// CreateExpenseParams holds the fields for a new expense row.
type CreateExpenseParams struct {
	OwnerID       string
	Amount        decimal.Decimal
	OccurredAt    time.Time
	PaymentMethod string
	CategoryID    string
	Description   string
}

// CreateExpense inserts a new expense and returns its id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, p CreateExpenseParams) (string, error) {
	id := uuid.NewString()

	const q = `
		INSERT INTO expenses (id, owner_id, amount, occurred_at, payment_method, category_id, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, id, p.OwnerID, p.Amount.String(), p.OccurredAt.UTC(),
		nullable(p.PaymentMethod), nullable(p.CategoryID), nullable(p.Description))
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		applog.FieldOwnerID, p.OwnerID,
		applog.FieldAmount, p.Amount.String(),
		"category_id", p.CategoryID)

	return id, nil
}

// UpdateExpenseParams holds the replacement fields for an expense row. Every
// field is written; the owner cannot change.
type UpdateExpenseParams struct {
	Amount        decimal.Decimal
	OccurredAt    time.Time
	PaymentMethod string
	CategoryID    string
	Description   string
}

// UpdateExpense replaces all mutable fields of an owner's expense and returns
// the updated row with its joined category name.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, ownerID, id string, p UpdateExpenseParams) (ExpenseDetail, error) {
	const q = `
		UPDATE expenses
		SET amount = ?, occurred_at = ?, payment_method = ?, category_id = ?, description = ?
		WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Amount.String(), p.OccurredAt.UTC(),
		nullable(p.PaymentMethod), nullable(p.CategoryID), nullable(p.Description), id, ownerID)
	if err != nil {
		return ExpenseDetail{}, fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ExpenseDetail{}, fmt.Errorf("update expense rows affected: %w", err)
	}
	if n == 0 {
		return ExpenseDetail{}, ErrNotFound
	}

	slog.InfoContext(ctx, "Expense updated",
		"id", id,
		applog.FieldOwnerID, ownerID,
		applog.FieldAmount, p.Amount.String())

	return r.getExpense(ctx, ownerID, id)
}

func (r *SQLiteRepository) getExpense(ctx context.Context, ownerID, id string) (ExpenseDetail, error) {
	const q = `
		SELECT e.id, COALESCE(e.amount, ''), e.occurred_at,
		       COALESCE(e.payment_method, ''), COALESCE(c.name, ''), COALESCE(e.description, '')
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.id = ? AND e.owner_id = ?`

	var d ExpenseDetail
	var occurredAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id, ownerID).
		Scan(&d.ID, &d.Amount, &occurredAt, &d.PaymentMethod, &d.CategoryName, &d.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return ExpenseDetail{}, ErrNotFound
	}
	if err != nil {
		return ExpenseDetail{}, fmt.Errorf("get expense: %w", err)
	}
	if occurredAt.Valid {
		d.OccurredAt = occurredAt.Time.UTC()
	}
	return d, nil
}

// DeleteExpense removes an owner's expense by id.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpenseDetail is a stored expense with its id and joined category name,
// as served by the listing and update endpoints.
type ExpenseDetail struct {
	ID            string    `json:"id"`
	Amount        string    `json:"amount"`
	OccurredAt    time.Time `json:"occurredAt"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	CategoryName  string    `json:"categoryName,omitempty"`
	Description   string    `json:"description,omitempty"`
}

// ListExpenses returns an owner's expenses, newest first. A nil window lists
// everything the owner has.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, ownerID string, window *core.DateWindow) ([]ExpenseDetail, error) {
	q := `
		SELECT e.id, COALESCE(e.amount, ''), e.occurred_at,
		       COALESCE(e.payment_method, ''), COALESCE(c.name, ''), COALESCE(e.description, '')
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.owner_id = ?`
	args := []any{ownerID}
	if window != nil {
		q += ` AND e.occurred_at >= ? AND e.occurred_at <= ?`
		args = append(args, window.Start, window.End)
	}
	q += ` ORDER BY e.occurred_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	details := []ExpenseDetail{}
	for rows.Next() {
		var d ExpenseDetail
		var occurredAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.Amount, &occurredAt, &d.PaymentMethod, &d.CategoryName, &d.Description); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if occurredAt.Valid {
			d.OccurredAt = occurredAt.Time.UTC()
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return details, nil
}

// Category is an owner-scoped expense category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateCategory inserts a category for the owner and returns its id.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, ownerID, name string) (string, error) {
	id := uuid.NewString()
	const q = `INSERT INTO categories (id, owner_id, name) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, id, ownerID, name); err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

// ListCategories returns the owner's categories sorted by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM categories WHERE owner_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// DeleteCategory removes an owner's category. Expenses that referenced it keep
// their row but lose the category link, so they no longer survive cleaning.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
