package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopCategoriesLimit caps the byCategory ranking to the 20 largest sums.
const TopCategoriesLimit = 20

// Window is an inclusive date range scoping an aggregation.
type Window struct {
	Start time.Time
	End   time.Time
}

// StatsTotals holds the window-wide aggregate figures.
type StatsTotals struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	Net              decimal.Decimal `json:"net"`
	TransactionCount int64           `json:"transactionCount"`
}

// CategorySum is one entry of the expense category ranking.
type CategorySum struct {
	Category string          `json:"category"`
	Sum      decimal.Decimal `json:"sum"`
}

// TrendPoint is one calendar-day bucket of the daily trend series.
// Days without transactions do not appear in the series.
type TrendPoint struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// StatsSummary is the full aggregation result for a window.
type StatsSummary struct {
	Totals     StatsTotals    `json:"totals"`
	ByCategory []*CategorySum `json:"byCategory"`
	Trend      []*TrendPoint  `json:"trend"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
}
