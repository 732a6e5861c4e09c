package insights

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/orionfin/orion/backend/internal/model"
)

// HealthInsight is one observation attached to a health score.
type HealthInsight struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// HealthScore is the composite 0–100 financial health metric with its
// inputs and derived advice.
type HealthScore struct {
	Score           float64         `json:"score"`
	SavingsRate     float64         `json:"savings_rate"`
	Income          float64         `json:"income_last_window"`
	Expenses        float64         `json:"expenses_last_window"`
	Insights        []HealthInsight `json:"insights"`
	Recommendations []string        `json:"recommendations"`
}

// healthRecommendations is always appended, independent of the score.
var healthRecommendations = []string{
	"Review your monthly subscriptions and cancel unused services",
	"Set up automatic transfers to savings on payday",
	"Create a budget for discretionary spending",
}

// FinancialHealth scores the most recent window of transactions (the caller
// supplies the last 90 days). The score is anchored at 50 and moves half a
// point per savings-rate point, clamped to [0, 100]. Zero income yields a
// zero savings rate rather than a division error.
func (e *Engine) FinancialHealth(records []model.Transaction, breakdown CategoryBreakdown) HealthScore {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, tx := range records {
		if tx.IsExpense() {
			expenses = expenses.Add(tx.Amount.Abs())
		} else {
			income = income.Add(tx.Amount)
		}
	}

	incomeF := income.InexactFloat64()
	expensesF := expenses.InexactFloat64()

	var savingsRate float64
	if incomeF > 0 {
		savingsRate = (incomeF - expensesF) / incomeF * 100
	}
	score := clamp(50+savingsRate*0.5, 0, 100)

	var insights []HealthInsight
	if savingsRate < 10 {
		insights = append(insights, HealthInsight{
			Type:     "low_savings_rate",
			Severity: "high",
			Message: fmt.Sprintf(
				"Your savings rate is %.1f%%. Consider increasing your savings rate to at least 20%% for better financial health.",
				savingsRate),
		})
	}
	if breakdown.TopCategory != "" {
		insights = append(insights, HealthInsight{
			Type:     "spending_insight",
			Severity: "medium",
			Message: fmt.Sprintf(
				"Your top spending category is %s, accounting for %.1f%% of your expenses.",
				breakdown.TopCategory, breakdown.TopPercentage),
		})
	}

	return HealthScore{
		Score:           roundTo1(score),
		SavingsRate:     roundTo1(savingsRate),
		Income:          incomeF,
		Expenses:        expensesF,
		Insights:        insights,
		Recommendations: healthRecommendations,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
