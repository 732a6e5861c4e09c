package insights

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/orionfin/orion/backend/internal/model"
)

// ErrInvalidParameter marks precondition failures on caller-supplied
// parameters (non-positive months or horizon). It is distinct from
// insufficient data, which is a normal result state.
var ErrInvalidParameter = errors.New("invalid parameter")

// defaultSeed fixes the outlier model's randomness so repeated analyses of
// the same snapshot flag the same rows.
const defaultSeed = 42

// Engine is the analysis engine. It holds no state between invocations
// beyond the outlier-model seed, so a single Engine is safe for concurrent
// use across users and time windows.
type Engine struct {
	seed int64
}

// NewEngine creates an engine with the default model seed.
func NewEngine() *Engine {
	return &Engine{seed: defaultSeed}
}

// NewEngineWithSeed creates an engine with an explicit model seed.
func NewEngineWithSeed(seed int64) *Engine {
	return &Engine{seed: seed}
}

// SpendingSummary is the headline numbers for a spending report.
type SpendingSummary struct {
	TotalSpent          float64 `json:"total_spent"`
	AverageMonthlySpend float64 `json:"avg_monthly_spend"`
	TopCategory         string  `json:"top_category"`
	InsightsGenerated   int     `json:"insights_generated"`
}

// SpendingReport is the merged output of one analysis invocation.
type SpendingReport struct {
	MonthlyTrend         MonthlyTrend         `json:"monthly_trend"`
	CategoryBreakdown    CategoryBreakdown    `json:"category_breakdown"`
	Anomalies            []AnomalyFinding     `json:"anomalies"`
	Recurring            []RecurringGroup     `json:"recurring"`
	SavingsOpportunities []SavingsOpportunity `json:"savings_opportunities"`
	Summary              SpendingSummary      `json:"summary"`
}

// AnalyzeSpending builds the feature snapshot once and runs the analyzers
// over it, merging their outputs into one report. windowMonths is the
// caller's analysis window and only scales the average-monthly figure.
// An empty snapshot produces an empty report, not an error.
//
// The analyzers share the immutable snapshot and never mutate it, so they
// run concurrently.
func (e *Engine) AnalyzeSpending(records []model.Transaction, windowMonths int) (*SpendingReport, error) {
	if windowMonths <= 0 {
		return nil, fmt.Errorf("%w: window months must be positive, got %d", ErrInvalidParameter, windowMonths)
	}

	report := &SpendingReport{MonthlyTrend: MonthlyTrend{Trend: TrendInsufficientData}}
	if len(records) == 0 {
		return report, nil
	}

	rows := BuildFeatures(records)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		report.MonthlyTrend = AnalyzeMonthlySpending(rows)
		report.CategoryBreakdown = AnalyzeCategories(rows)
	}()
	go func() {
		defer wg.Done()
		report.Anomalies = DetectAmountOutliers(rows)
	}()
	go func() {
		defer wg.Done()
		report.Recurring = FindRecurring(records)
	}()
	go func() {
		defer wg.Done()
		report.SavingsOpportunities = FindSavingsOpportunities(rows)
	}()
	wg.Wait()

	totalSpent := decimal.Zero
	for _, tx := range records {
		if tx.IsExpense() {
			totalSpent = totalSpent.Add(tx.Amount.Abs())
		}
	}
	totalF := totalSpent.InexactFloat64()

	generated := 1 // the trend section is always present
	if len(report.CategoryBreakdown.Categories) > 0 {
		generated += 2 // top category + distribution
	}
	if len(report.Anomalies) > 0 {
		generated++
	}
	if len(report.Recurring) > 0 {
		generated++
	}
	if len(report.SavingsOpportunities) > 0 {
		generated++
	}

	report.Summary = SpendingSummary{
		TotalSpent:          totalF,
		AverageMonthlySpend: totalF / float64(windowMonths),
		TopCategory:         report.CategoryBreakdown.TopCategory,
		InsightsGenerated:   generated,
	}
	return report, nil
}
