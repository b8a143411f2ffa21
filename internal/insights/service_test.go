package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsight/internal/core"
)

type fakeStore struct {
	records []core.ExpenseRecord
	err     error

	gotOwner  string
	gotWindow core.DateWindow
}

func (f *fakeStore) FetchExpenses(ctx context.Context, ownerID string, w core.DateWindow) ([]core.ExpenseRecord, error) {
	f.gotOwner = ownerID
	f.gotWindow = w
	return f.records, f.err
}

func TestComputeValidation(t *testing.T) {
	agg := NewAggregator(&fakeStore{})

	cases := []struct {
		name              string
		owner, start, end string
	}{
		{"missing owner", "", "2025-06-01", "2025-06-02"},
		{"blank owner", "   ", "2025-06-01", "2025-06-02"},
		{"missing start", "u1", "", "2025-06-02"},
		{"missing end", "u1", "2025-06-01", ""},
		{"bad start", "u1", "2025-13-40", "2025-06-02"},
		{"bad end", "u1", "2025-06-01", "not-a-date"},
		{"inverted range", "u1", "2025-06-10", "2025-06-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := agg.Compute(context.Background(), tc.owner, tc.start, tc.end)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			assert.False(t, IsFetch(err))
		})
	}
}

func TestComputeFetchError(t *testing.T) {
	storeErr := errors.New("connection refused")
	agg := NewAggregator(&fakeStore{err: storeErr})

	_, err := agg.Compute(context.Background(), "u1", "2025-06-01", "2025-06-02")
	require.Error(t, err)
	assert.True(t, IsFetch(err))
	assert.False(t, IsValidation(err))
	assert.ErrorIs(t, err, storeErr)
}

func TestComputeEmptyWindow(t *testing.T) {
	agg := NewAggregator(&fakeStore{})

	r, err := agg.Compute(context.Background(), "u1", "2025-06-01", "2025-06-07")
	require.NoError(t, err)
	assert.Equal(t, 0, r.TransactionCount)
	assert.True(t, r.TotalSpent.IsZero())
	assert.Equal(t, NoDominantMethod, r.DominantPaymentMethod)
	assert.Nil(t, r.HighestSingleExpense)
	assert.Equal(t, 7, r.DaysInWindow)
}

func TestComputeWindowPassedToStore(t *testing.T) {
	store := &fakeStore{}
	agg := NewAggregator(store)

	_, err := agg.Compute(context.Background(), "u1", "2025-06-01", "2025-06-02")
	require.NoError(t, err)

	assert.Equal(t, "u1", store.gotOwner)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), store.gotWindow.Start)
	assert.Equal(t, time.Date(2025, 6, 2, 23, 59, 59, 0, time.UTC), store.gotWindow.End)
}

func TestComputeEndToEnd(t *testing.T) {
	store := &fakeStore{records: []core.ExpenseRecord{
		{
			OwnerID:       "u1",
			Amount:        "100",
			OccurredAt:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
			CategoryName:  "Food",
			PaymentMethod: "upi",
		},
		{
			OwnerID:       "u1",
			Amount:        "50",
			OccurredAt:    time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC),
			CategoryName:  "Food",
			PaymentMethod: "cash",
		},
	}}
	agg := NewAggregator(store)

	r, err := agg.Compute(context.Background(), "u1", "2025-06-01", "2025-06-02")
	require.NoError(t, err)

	assert.Equal(t, "u1", r.OwnerID)
	assert.Equal(t, Window{Start: "2025-06-01", End: "2025-06-02"}, r.DateWindow)
	assert.Equal(t, "150", r.TotalSpent.String())
	assert.Equal(t, 2, r.TransactionCount)
	assert.Equal(t, "75", r.AverageTransactionValue.String())
	require.Len(t, r.TopCategories, 1)
	assert.Equal(t, "Food", r.TopCategories[0].Name)
	assert.Equal(t, "150", r.TopCategories[0].Total.String())
	assert.Equal(t, "upi", r.DominantPaymentMethod)
	require.NotNil(t, r.HighestSingleExpense)
	assert.Equal(t, "100", r.HighestSingleExpense.Amount.String())
	assert.Equal(t, "2025-06-01", r.HighestSingleExpense.Date)
	assert.Equal(t, 2, r.DaysInWindow)
	assert.Equal(t, 2, r.UniqueDaysWithActivity)
}

func TestComputeDeterministic(t *testing.T) {
	store := &fakeStore{records: []core.ExpenseRecord{
		{OwnerID: "u1", Amount: "10", OccurredAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), CategoryName: "A", PaymentMethod: "x"},
		{OwnerID: "u1", Amount: "10", OccurredAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), CategoryName: "B", PaymentMethod: "y"},
		{OwnerID: "u1", Amount: "10", OccurredAt: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), CategoryName: "C", PaymentMethod: "z"},
	}}
	agg := NewAggregator(store)

	first, err := agg.Compute(context.Background(), "u1", "2025-06-01", "2025-06-02")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		next, err := agg.Compute(context.Background(), "u1", "2025-06-01", "2025-06-02")
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}
