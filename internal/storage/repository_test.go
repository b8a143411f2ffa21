package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustWindow(t *testing.T, start, end string) core.DateWindow {
	t.Helper()
	w, err := core.NewDateWindow(start, end)
	require.NoError(t, err)
	return w
}

func TestFetchExpensesWindowAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	catID, err := repo.CreateCategory(ctx, "u1", "Food")
	require.NoError(t, err)

	days := []time.Time{
		time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), // outside window
	}
	for i, ts := range days {
		_, err := repo.CreateExpense(ctx, CreateExpenseParams{
			OwnerID:       "u1",
			Amount:        decimal.NewFromInt(int64(10 * (i + 1))),
			OccurredAt:    ts,
			PaymentMethod: "cash",
			CategoryID:    catID,
		})
		require.NoError(t, err)
	}

	// Different owner, same window: must not leak.
	_, err = repo.CreateExpense(ctx, CreateExpenseParams{
		OwnerID:    "u2",
		Amount:     decimal.NewFromInt(99),
		OccurredAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		CategoryID: catID,
	})
	require.NoError(t, err)

	records, err := repo.FetchExpenses(ctx, "u1", mustWindow(t, "2025-06-01", "2025-06-03"))
	require.NoError(t, err)

	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].OccurredAt.Before(records[i-1].OccurredAt),
			"rows not ascending by timestamp")
	}
	for _, rec := range records {
		assert.Equal(t, "u1", rec.OwnerID)
		assert.Equal(t, "Food", rec.CategoryName)
	}
}

func TestFetchExpensesNullableColumns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Insert a deliberately corrupt row the way a legacy writer might have.
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO expenses (id, owner_id, amount, occurred_at, payment_method, category_id)
		 VALUES ('x1', 'u1', NULL, ?, NULL, NULL)`,
		time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	records, err := repo.FetchExpenses(ctx, "u1", mustWindow(t, "2025-06-01", "2025-06-01"))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Amount)
	assert.Equal(t, "", records[0].PaymentMethod)
	assert.Equal(t, "", records[0].CategoryName)
	assert.False(t, records[0].OccurredAt.IsZero())
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	catID, err := repo.CreateCategory(ctx, "u1", "Travel")
	require.NoError(t, err)

	id, err := repo.CreateExpense(ctx, CreateExpenseParams{
		OwnerID:       "u1",
		Amount:        decimal.RequireFromString("42.50"),
		OccurredAt:    time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
		PaymentMethod: "card",
		CategoryID:    catID,
		Description:   "train ticket",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	june := mustWindow(t, "2025-06-01", "2025-06-30")
	list, err := repo.ListExpenses(ctx, "u1", &june)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "42.5", list[0].Amount)
	assert.Equal(t, "card", list[0].PaymentMethod)
	assert.Equal(t, "Travel", list[0].CategoryName)
	assert.Equal(t, "train ticket", list[0].Description)

	require.NoError(t, repo.DeleteExpense(ctx, "u1", id))
	assert.ErrorIs(t, repo.DeleteExpense(ctx, "u1", id), ErrNotFound)

	list, err = repo.ListExpenses(ctx, "u1", &june)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	foodID, err := repo.CreateCategory(ctx, "u1", "Food")
	require.NoError(t, err)
	travelID, err := repo.CreateCategory(ctx, "u1", "Travel")
	require.NoError(t, err)

	id, err := repo.CreateExpense(ctx, CreateExpenseParams{
		OwnerID:       "u1",
		Amount:        decimal.NewFromInt(10),
		OccurredAt:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		PaymentMethod: "cash",
		CategoryID:    foodID,
		Description:   "lunch",
	})
	require.NoError(t, err)

	updated, err := repo.UpdateExpense(ctx, "u1", id, UpdateExpenseParams{
		Amount:        decimal.RequireFromString("25.75"),
		OccurredAt:    time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC),
		PaymentMethod: "card",
		CategoryID:    travelID,
		Description:   "taxi",
	})
	require.NoError(t, err)

	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "25.75", updated.Amount)
	assert.Equal(t, "card", updated.PaymentMethod)
	assert.Equal(t, "Travel", updated.CategoryName)
	assert.Equal(t, "taxi", updated.Description)
	assert.Equal(t, time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC), updated.OccurredAt)

	// Unknown id and wrong owner both look like a missing row.
	_, err = repo.UpdateExpense(ctx, "u1", "missing", UpdateExpenseParams{Amount: decimal.NewFromInt(1), OccurredAt: time.Now()})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.UpdateExpense(ctx, "u2", id, UpdateExpenseParams{Amount: decimal.NewFromInt(1), OccurredAt: time.Now()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListExpensesWithoutWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, ts := range []time.Time{
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	} {
		_, err := repo.CreateExpense(ctx, CreateExpenseParams{
			OwnerID:    "u1",
			Amount:     decimal.NewFromInt(5),
			OccurredAt: ts,
		})
		require.NoError(t, err)
	}

	list, err := repo.ListExpenses(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].OccurredAt.After(list[1].OccurredAt), "newest first")
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, err := repo.CreateCategory(ctx, "u1", "Food")
	require.NoError(t, err)
	_, err = repo.CreateCategory(ctx, "u1", "Bills")
	require.NoError(t, err)

	// Duplicate name for the same owner is rejected.
	_, err = repo.CreateCategory(ctx, "u1", "Food")
	require.Error(t, err)

	// Same name for another owner is fine.
	_, err = repo.CreateCategory(ctx, "u2", "Food")
	require.NoError(t, err)

	cats, err := repo.ListCategories(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Bills", cats[0].Name)
	assert.Equal(t, "Food", cats[1].Name)

	require.NoError(t, repo.DeleteCategory(ctx, "u1", id1))
	assert.ErrorIs(t, repo.DeleteCategory(ctx, "u1", id1), ErrNotFound)
}

func TestDeleteCategoryDetachesExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	catID, err := repo.CreateCategory(ctx, "u1", "Food")
	require.NoError(t, err)

	_, err = repo.CreateExpense(ctx, CreateExpenseParams{
		OwnerID:    "u1",
		Amount:     decimal.NewFromInt(10),
		OccurredAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		CategoryID: catID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCategory(ctx, "u1", catID))

	records, err := repo.FetchExpenses(ctx, "u1", mustWindow(t, "2025-06-01", "2025-06-01"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].CategoryName, "expense should lose its category link")
}
