package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orionfin/orion/backend/internal/model"
)

// minForecastMonths is the history needed before a forecast is emitted.
const minForecastMonths = 6

// SpendingPrediction is one forecast period.
type SpendingPrediction struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}

// Forecast is the projected monthly spending for a horizon, with a
// confidence derived from how much history backed it. Confidence 0 with an
// empty prediction list means there was not enough history; that is a
// normal result, not an error.
type Forecast struct {
	Predictions []SpendingPrediction `json:"predictions"`
	Confidence  float64              `json:"confidence"`
	Message     string               `json:"message"`
}

// ForecastSpending projects monthly expense totals for the next
// horizonMonths. The caller should supply at least twice the horizon in
// history (12 months minimum); with fewer than 6 distinct months of data
// the forecast is withheld. The baseline is a trailing moving average, and
// a fixed ±10% three-period cycle approximates seasonality.
func (e *Engine) ForecastSpending(records []model.Transaction, horizonMonths int) (*Forecast, error) {
	if horizonMonths <= 0 {
		return nil, fmt.Errorf("%w: horizon months must be positive, got %d", ErrInvalidParameter, horizonMonths)
	}

	months, totals := monthlyExpenseTotals(records)
	if len(totals) < minForecastMonths {
		return &Forecast{
			Confidence: 0,
			Message:    fmt.Sprintf("Insufficient historical data (need at least %d months)", minForecastMonths),
		}, nil
	}

	window := len(totals) / 2
	if window > 3 {
		window = 3
	}

	// Moving average over the series, then average the trailing window of
	// those values for a single baseline estimate.
	var rolling []float64
	for i := window - 1; i < len(totals); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += totals[j]
		}
		rolling = append(rolling, sum/float64(window))
	}
	var baseline float64
	trailing := rolling[len(rolling)-window:]
	for _, v := range trailing {
		baseline += v
	}
	baseline /= float64(len(trailing))

	lastMonth, err := time.Parse(monthBucketFormat, months[len(months)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse month bucket %q: %w", months[len(months)-1], err)
	}

	predictions := make([]SpendingPrediction, 0, horizonMonths)
	for i := 0; i < horizonMonths; i++ {
		seasonal := 1 + float64(i%3-1)*0.1
		predictions = append(predictions, SpendingPrediction{
			Period: lastMonth.AddDate(0, i+1, 0).Format(monthBucketFormat),
			Amount: baseline * seasonal,
		})
	}

	confidence := 0.5 + 0.1*float64(len(totals))
	if confidence > 0.9 {
		confidence = 0.9
	}

	return &Forecast{
		Predictions: predictions,
		Confidence:  confidence,
		Message:     fmt.Sprintf("Prediction based on %d months of historical data", len(totals)),
	}, nil
}

// monthlyExpenseTotals returns the distinct months present in the snapshot
// (ascending) and the absolute expense total for each.
func monthlyExpenseTotals(records []model.Transaction) ([]string, []float64) {
	byMonth := make(map[string]decimal.Decimal)
	for _, tx := range records {
		if tx.IsExpense() {
			bucket := tx.Date.Format(monthBucketFormat)
			byMonth[bucket] = byMonth[bucket].Add(tx.Amount.Abs())
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	totals := make([]float64, 0, len(months))
	for _, m := range months {
		totals = append(totals, byMonth[m].InexactFloat64())
	}
	return months, totals
}
