package insights

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendsight/internal/core"
)

// decimalSums accumulates decimal totals while preserving first-seen key
// order. Tie-breaks in the report depend on that order, which follows the
// timestamp-ascending fetch sequence.
type decimalSums struct {
	keys []string
	sums map[string]decimal.Decimal
}

func newDecimalSums() *decimalSums {
	return &decimalSums{sums: make(map[string]decimal.Decimal)}
}

func (s *decimalSums) add(key string, amount decimal.Decimal) {
	if _, seen := s.sums[key]; !seen {
		s.keys = append(s.keys, key)
	}
	s.sums[key] = s.sums[key].Add(amount)
}

// Aggregate reduces cleaned expenses into a Report. Expenses must be in
// ascending timestamp order, as returned by the store; all tie-breaks are
// first-seen in that order.
func Aggregate(ownerID string, window core.DateWindow, expenses []core.Expense) Report {
	// The store already filters by window; rows outside it would silently skew
	// the daily breakdown, so they are dropped here too.
	inWindow := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if window.Contains(e.OccurredAt) {
			inWindow = append(inWindow, e)
		}
	}
	expenses = inWindow

	if len(expenses) == 0 {
		return emptyReport(ownerID, window)
	}

	daily := newDecimalSums()
	categories := newDecimalSums()
	methodOrder := make([]string, 0, 4)
	methodCounts := make(map[string]int)

	total := decimal.Zero
	highest := expenses[0]

	for _, e := range expenses {
		total = total.Add(e.Amount)
		daily.add(e.Day(), e.Amount)
		categories.add(e.CategoryName, e.Amount)

		if _, seen := methodCounts[e.PaymentMethod]; !seen {
			methodOrder = append(methodOrder, e.PaymentMethod)
		}
		methodCounts[e.PaymentMethod]++

		if e.Amount.GreaterThan(highest.Amount) {
			highest = e
		}
	}

	totalSpent := core.Round2(total)
	count := len(expenses)
	average := core.Round2(totalSpent.Div(decimal.NewFromInt(int64(count))))

	dailyTotals := make([]DailyTotal, 0, len(daily.keys))
	for _, day := range daily.keys {
		dailyTotals = append(dailyTotals, DailyTotal{Date: day, Total: core.Round2(daily.sums[day])})
	}
	sort.Slice(dailyTotals, func(i, j int) bool {
		return dailyTotals[i].Date < dailyTotals[j].Date
	})

	categoryTotals := make([]CategoryTotal, 0, len(categories.keys))
	for _, name := range categories.keys {
		categoryTotals = append(categoryTotals, CategoryTotal{Name: name, Total: core.Round2(categories.sums[name])})
	}
	// Stable keeps first-seen order between equal totals.
	sort.SliceStable(categoryTotals, func(i, j int) bool {
		return categoryTotals[i].Total.GreaterThan(categoryTotals[j].Total)
	})
	if len(categoryTotals) > 5 {
		categoryTotals = categoryTotals[:5]
	}

	dominant := methodOrder[0]
	for _, m := range methodOrder[1:] {
		if methodCounts[m] > methodCounts[dominant] {
			dominant = m
		}
	}

	return Report{
		OwnerID:                 ownerID,
		DateWindow:              Window{Start: window.StartDate(), End: window.EndDate()},
		TotalSpent:              totalSpent,
		TransactionCount:        count,
		AverageTransactionValue: average,
		TopCategories:           categoryTotals,
		DominantPaymentMethod:   dominant,
		HighestSingleExpense: &HighestExpense{
			Category: highest.CategoryName,
			Amount:   highest.Amount,
			Date:     highest.Day(),
			Method:   highest.PaymentMethod,
		},
		DaysInWindow:           window.Days(),
		UniqueDaysWithActivity: len(daily.keys),
		DailyTotals:            dailyTotals,
	}
}

// Clean filters raw store rows down to valid expenses. Malformed rows are
// dropped, never reported: one corrupt record must not fail the whole report.
func Clean(records []core.ExpenseRecord) []core.Expense {
	expenses := make([]core.Expense, 0, len(records))
	for _, rec := range records {
		e, err := rec.Clean()
		if err != nil {
			continue
		}
		expenses = append(expenses, e)
	}
	return expenses
}
