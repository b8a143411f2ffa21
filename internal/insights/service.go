// Package insights reduces raw expense rows into a summarized analytics
// report: totals, category ranking, payment-method mode, daily breakdown and
// extremes for one owner over an inclusive calendar date window.
package insights

import (
	"context"
	"log/slog"
	"strings"

	"spendsight/internal/core"
	applog "spendsight/internal/log"
)

// Store is the external collaborator the aggregator reads from. FetchExpenses
// returns raw rows for the owner whose timestamps fall inside the window,
// ascending by timestamp, joined with the category name.
type Store interface {
	FetchExpenses(ctx context.Context, ownerID string, window core.DateWindow) ([]core.ExpenseRecord, error)
}

// Aggregator computes insight reports. It holds no mutable state, so a single
// instance serves concurrent requests without coordination.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Compute validates the request, fetches raw rows, drops malformed ones and
// aggregates the rest. Identical inputs and identical fetched data always
// produce an identical report.
//
// Errors are either *ValidationError (bad request, never retried) or
// *FetchError (store failure, propagated as-is).
func (a *Aggregator) Compute(ctx context.Context, ownerID, startDate, endDate string) (Report, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Report{}, &ValidationError{Reason: "ownerId is required"}
	}
	if startDate == "" || endDate == "" {
		return Report{}, &ValidationError{Reason: "both startDate and endDate are required"}
	}

	window, err := core.NewDateWindow(startDate, endDate)
	if err != nil {
		return Report{}, &ValidationError{Reason: err.Error()}
	}

	records, err := a.store.FetchExpenses(ctx, ownerID, window)
	if err != nil {
		return Report{}, &FetchError{Err: err}
	}

	expenses := Clean(records)
	if dropped := len(records) - len(expenses); dropped > 0 {
		slog.WarnContext(ctx, "Dropped malformed expense rows",
			applog.FieldOwnerID, ownerID,
			"fetched", len(records),
			"dropped", dropped)
	}

	report := Aggregate(ownerID, window, expenses)

	slog.DebugContext(ctx, "Computed insights report",
		applog.FieldOwnerID, ownerID,
		"start", window.StartDate(),
		"end", window.EndDate(),
		"transactions", report.TransactionCount,
		"total_spent", report.TotalSpent.String())

	return report, nil
}
