package insights

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TrendLabel classifies the direction of monthly spending.
type TrendLabel string

const (
	TrendIncreasing       TrendLabel = "increasing"
	TrendDecreasing       TrendLabel = "decreasing"
	TrendStable           TrendLabel = "stable"
	TrendInsufficientData TrendLabel = "insufficient_data"
)

// MonthlyAggregate is the expense/income total for one calendar month
// present in the snapshot.
type MonthlyAggregate struct {
	Month        string  `json:"month"`
	TotalExpense float64 `json:"total_expense"`
	TotalIncome  float64 `json:"total_income"`
}

// MonthlyTrend summarizes spending across the months present in the
// snapshot, with an OLS-derived trend direction.
type MonthlyTrend struct {
	AverageMonthlySpend float64            `json:"average_monthly_spend"`
	MaxMonthlySpend     float64            `json:"max_monthly_spend"`
	MinMonthlySpend     float64            `json:"min_monthly_spend"`
	Trend               TrendLabel         `json:"trend"`
	Months              []MonthlyAggregate `json:"months"`
}

// CategoryAggregate is the expense total and share for one category.
type CategoryAggregate struct {
	Category     string  `json:"category"`
	TotalExpense float64 `json:"total_expense"`
	Percentage   float64 `json:"percentage"`
}

// CategoryBreakdown lists category totals sorted by spend descending, with
// the top category called out.
type CategoryBreakdown struct {
	Categories    []CategoryAggregate `json:"categories"`
	TopCategory   string              `json:"top_category"`
	TopAmount     float64             `json:"top_amount"`
	TopPercentage float64             `json:"top_percentage"`
}

// AnalyzeMonthlySpending aggregates absolute expense amounts by month and
// fits a linear trend over the month sequence. Fewer than two distinct
// months yields TrendInsufficientData.
//
// The regression runs over the index of months present, not their calendar
// position: a missing month compresses the x-axis rather than leaving a gap.
func AnalyzeMonthlySpending(rows []FeatureRow) MonthlyTrend {
	expenseByMonth := make(map[string]decimal.Decimal)
	incomeByMonth := make(map[string]decimal.Decimal)
	for _, r := range rows {
		if r.IsExpense() {
			expenseByMonth[r.MonthBucket] = expenseByMonth[r.MonthBucket].Add(r.Amount.Abs())
		} else {
			incomeByMonth[r.MonthBucket] = incomeByMonth[r.MonthBucket].Add(r.Amount)
		}
	}

	months := make(map[string]bool)
	for m := range expenseByMonth {
		months[m] = true
	}
	for m := range incomeByMonth {
		months[m] = true
	}
	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	trend := MonthlyTrend{Trend: TrendInsufficientData}
	if len(keys) == 0 {
		return trend
	}

	var totals []float64
	var sum float64
	for i, m := range keys {
		expense := expenseByMonth[m].InexactFloat64()
		trend.Months = append(trend.Months, MonthlyAggregate{
			Month:        m,
			TotalExpense: expense,
			TotalIncome:  incomeByMonth[m].InexactFloat64(),
		})
		totals = append(totals, expense)
		sum += expense
		if i == 0 {
			trend.MaxMonthlySpend = expense
			trend.MinMonthlySpend = expense
			continue
		}
		if expense > trend.MaxMonthlySpend {
			trend.MaxMonthlySpend = expense
		}
		if expense < trend.MinMonthlySpend {
			trend.MinMonthlySpend = expense
		}
	}
	trend.AverageMonthlySpend = sum / float64(len(totals))

	if len(totals) >= 2 {
		slope, _ := linearRegression(totals)
		switch {
		case slope > 0:
			trend.Trend = TrendIncreasing
		case slope < 0:
			trend.Trend = TrendDecreasing
		default:
			trend.Trend = TrendStable
		}
	}
	return trend
}

// AnalyzeCategories aggregates absolute expense amounts by category, sorted
// by spend descending. The top category's percentage is its share of total
// expenses; when nothing was spent, the breakdown is empty.
func AnalyzeCategories(rows []FeatureRow) CategoryBreakdown {
	byCategory := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, r := range rows {
		if !r.IsExpense() {
			continue
		}
		abs := r.Amount.Abs()
		byCategory[categoryOrDefault(r.Category)] = byCategory[categoryOrDefault(r.Category)].Add(abs)
		total = total.Add(abs)
	}

	var breakdown CategoryBreakdown
	if total.IsZero() {
		return breakdown
	}

	totalF := total.InexactFloat64()
	for cat, amt := range byCategory {
		amtF := amt.InexactFloat64()
		breakdown.Categories = append(breakdown.Categories, CategoryAggregate{
			Category:     cat,
			TotalExpense: amtF,
			Percentage:   amtF / totalF * 100,
		})
	}
	sort.Slice(breakdown.Categories, func(i, j int) bool {
		if breakdown.Categories[i].TotalExpense != breakdown.Categories[j].TotalExpense {
			return breakdown.Categories[i].TotalExpense > breakdown.Categories[j].TotalExpense
		}
		return breakdown.Categories[i].Category < breakdown.Categories[j].Category
	})

	top := breakdown.Categories[0]
	breakdown.TopCategory = top.Category
	breakdown.TopAmount = top.TotalExpense
	breakdown.TopPercentage = top.Percentage
	return breakdown
}

// linearRegression computes slope and R-squared for a series of y-values
// where x = 0, 1, 2, ... (the index).
func linearRegression(points []float64) (slope, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range points {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, y := range points {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return slope, 1
	}
	rSquared = 1 - ssRes/ssTot
	return slope, rSquared
}

// categoryOrDefault maps an empty category to the user-facing default.
func categoryOrDefault(category string) string {
	if category == "" {
		return "Uncategorized"
	}
	return category
}
