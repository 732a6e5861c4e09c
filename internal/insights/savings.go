package insights

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// feeThreshold is the fee total (absolute) above which fees are
	// surfaced as a savings opportunity.
	feeThreshold = 10.0
	// discretionaryThreshold is the average monthly discretionary spend
	// above which a budget suggestion is surfaced.
	discretionaryThreshold = 200.0
)

var feeKeywords = []string{"fee", "charge", "penalty"}

var discretionaryCategories = map[string]bool{
	"Dining":        true,
	"Entertainment": true,
	"Shopping":      true,
	"Hobbies":       true,
}

// SavingsOpportunity is a concrete suggestion for reducing spend.
type SavingsOpportunity struct {
	Type       string  `json:"type"`
	Amount     float64 `json:"amount"`
	Suggestion string  `json:"suggestion"`
}

// FindSavingsOpportunities scans the snapshot for avoidable costs: bank
// fees and penalties, and persistently high discretionary spending.
func FindSavingsOpportunities(rows []FeatureRow) []SavingsOpportunity {
	var opportunities []SavingsOpportunity

	feeTotal := decimal.Zero
	for _, r := range rows {
		desc := strings.ToLower(r.Description)
		for _, kw := range feeKeywords {
			if strings.Contains(desc, kw) {
				feeTotal = feeTotal.Add(r.Amount)
				break
			}
		}
	}
	if feeTotal.LessThan(decimal.NewFromFloat(-feeThreshold)) {
		opportunities = append(opportunities, SavingsOpportunity{
			Type:       "high_fees",
			Amount:     feeTotal.Abs().InexactFloat64(),
			Suggestion: "Consider switching to accounts with lower fees",
		})
	}

	discByMonth := make(map[string]decimal.Decimal)
	for _, r := range rows {
		if r.IsExpense() && discretionaryCategories[r.Category] {
			discByMonth[r.MonthBucket] = discByMonth[r.MonthBucket].Add(r.Amount.Abs())
		}
	}
	if len(discByMonth) > 0 {
		total := decimal.Zero
		for _, amt := range discByMonth {
			total = total.Add(amt)
		}
		monthlyAvg := total.InexactFloat64() / float64(len(discByMonth))
		if monthlyAvg > discretionaryThreshold {
			opportunities = append(opportunities, SavingsOpportunity{
				Type:       "high_discretionary_spending",
				Amount:     monthlyAvg,
				Suggestion: "Consider setting a monthly budget for discretionary spending",
			})
		}
	}

	return opportunities
}
