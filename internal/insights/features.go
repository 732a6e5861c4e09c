// Package insights implements the financial-insights analysis engine: a
// batch pipeline that derives spending patterns, anomaly flags, recurring
// payment detections, savings opportunities, forecasts and a health score
// from a snapshot of one user's transactions. Every operation is a pure
// function of its input snapshot; the engine holds no state between calls.
package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orionfin/orion/backend/internal/model"
)

// monthBucketFormat is the year-month key used for all monthly grouping.
const monthBucketFormat = "2006-01"

// FeatureRow is one transaction with its derived features. Rows are built
// fresh per analysis call and never persisted.
type FeatureRow struct {
	ID          string
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	AbsAmount   float64
	Category    string
	MonthBucket string
	Weekday     time.Weekday
	IsWeekend   bool

	// DaysSincePrior is the gap in whole days from the chronologically
	// previous row in the same snapshot. HasPrior is false on the first row.
	DaysSincePrior int
	HasPrior       bool
}

// IsExpense reports whether the row is an outflow.
func (r FeatureRow) IsExpense() bool {
	return r.Amount.IsNegative()
}

// BuildFeatures converts raw transactions into the derived feature table.
// Input order does not matter; output is sorted by date ascending with the
// same cardinality as the input. An empty input yields an empty table.
func BuildFeatures(records []model.Transaction) []FeatureRow {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]model.Transaction, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	rows := make([]FeatureRow, 0, len(sorted))
	for i, tx := range sorted {
		weekday := tx.Date.Weekday()
		row := FeatureRow{
			ID:          tx.ID,
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount,
			AbsAmount:   tx.Amount.Abs().InexactFloat64(),
			Category:    tx.Category,
			MonthBucket: tx.Date.Format(monthBucketFormat),
			Weekday:     weekday,
			IsWeekend:   weekday == time.Saturday || weekday == time.Sunday,
		}
		if i > 0 {
			row.DaysSincePrior = daysBetween(sorted[i-1].Date, tx.Date)
			row.HasPrior = true
		}
		rows = append(rows, row)
	}
	return rows
}

// expenseRows filters the snapshot down to expense rows.
func expenseRows(rows []FeatureRow) []FeatureRow {
	var expenses []FeatureRow
	for _, r := range rows {
		if r.IsExpense() {
			expenses = append(expenses, r)
		}
	}
	return expenses
}

// daysBetween returns the whole-day difference between two instants.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
