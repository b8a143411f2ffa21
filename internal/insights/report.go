package insights

import (
	"github.com/shopspring/decimal"

	"spendsight/internal/core"
)

// NoDominantMethod is reported when no cleaned expenses exist in the window.
const NoDominantMethod = "N/A"

type (
	// CategoryTotal is the summed spend for one category.
	CategoryTotal struct {
		Name  string          `json:"name"`
		Total decimal.Decimal `json:"total"`
	}

	// DailyTotal is the summed spend for one calendar date.
	DailyTotal struct {
		Date  string          `json:"date"`
		Total decimal.Decimal `json:"total"`
	}

	// HighestExpense describes the single largest cleaned expense.
	HighestExpense struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Date     string          `json:"date"`
		Method   string          `json:"method"`
	}

	// Window echoes the requested calendar date range.
	Window struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	// Report is the summarized analytics output for one owner and window.
	Report struct {
		OwnerID                 string          `json:"ownerId"`
		DateWindow              Window          `json:"dateWindow"`
		TotalSpent              decimal.Decimal `json:"totalSpent"`
		TransactionCount        int             `json:"transactionCount"`
		AverageTransactionValue decimal.Decimal `json:"averageTransactionValue"`
		TopCategories           []CategoryTotal `json:"topCategories"`
		DominantPaymentMethod   string          `json:"dominantPaymentMethod"`
		HighestSingleExpense    *HighestExpense `json:"highestSingleExpense"`
		DaysInWindow            int             `json:"daysInWindow"`
		UniqueDaysWithActivity  int             `json:"uniqueDaysWithActivity"`
		DailyTotals             []DailyTotal    `json:"dailyTotals"`
	}
)

// emptyReport is returned when no rows were fetched or none survived
// cleaning. Slices are non-nil so they serialize as [] rather than null.
func emptyReport(ownerID string, window core.DateWindow) Report {
	return Report{
		OwnerID:                 ownerID,
		DateWindow:              Window{Start: window.StartDate(), End: window.EndDate()},
		TotalSpent:              decimal.Zero,
		TransactionCount:        0,
		AverageTransactionValue: decimal.Zero,
		TopCategories:           []CategoryTotal{},
		DominantPaymentMethod:   NoDominantMethod,
		HighestSingleExpense:    nil,
		DaysInWindow:            window.Days(),
		UniqueDaysWithActivity:  0,
		DailyTotals:             []DailyTotal{},
	}
}
