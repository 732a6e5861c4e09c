package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionfin/orion/backend/internal/model"
)

func TestAnalyzeMonthlySpending(t *testing.T) {
	t.Run("fewer than two months is insufficient data", func(t *testing.T) {
		rows := BuildFeatures([]model.Transaction{
			tx("a", day(2025, 1, 5), "Rent", -1000, "Housing"),
			tx("b", day(2025, 1, 20), "Food", -200, "Food"),
		})
		trend := AnalyzeMonthlySpending(rows)
		assert.Equal(t, TrendInsufficientData, trend.Trend)
		require.Len(t, trend.Months, 1)
		assert.InDelta(t, 1200, trend.Months[0].TotalExpense, 1e-9)
	})

	t.Run("rising totals trend increasing", func(t *testing.T) {
		records := []model.Transaction{
			tx("a", day(2025, 1, 5), "Shop", -100, "Shopping"),
			tx("b", day(2025, 2, 5), "Shop", -200, "Shopping"),
			tx("c", day(2025, 3, 5), "Shop", -300, "Shopping"),
		}
		trend := AnalyzeMonthlySpending(BuildFeatures(records))

		assert.Equal(t, TrendIncreasing, trend.Trend)
		assert.InDelta(t, 200, trend.AverageMonthlySpend, 1e-9)
		assert.InDelta(t, 300, trend.MaxMonthlySpend, 1e-9)
		assert.InDelta(t, 100, trend.MinMonthlySpend, 1e-9)
		require.Len(t, trend.Months, 3)
		assert.Equal(t, "2025-01", trend.Months[0].Month)
		assert.Equal(t, "2025-03", trend.Months[2].Month)
	})

	t.Run("falling totals trend decreasing", func(t *testing.T) {
		records := []model.Transaction{
			tx("a", day(2025, 1, 5), "Shop", -300, "Shopping"),
			tx("b", day(2025, 2, 5), "Shop", -100, "Shopping"),
		}
		trend := AnalyzeMonthlySpending(BuildFeatures(records))
		assert.Equal(t, TrendDecreasing, trend.Trend)
	})

	t.Run("income is aggregated separately", func(t *testing.T) {
		records := []model.Transaction{
			tx("a", day(2025, 1, 5), "Salary", 5000, "Income"),
			tx("b", day(2025, 1, 10), "Rent", -1500, "Housing"),
		}
		trend := AnalyzeMonthlySpending(BuildFeatures(records))
		require.Len(t, trend.Months, 1)
		assert.InDelta(t, 5000, trend.Months[0].TotalIncome, 1e-9)
		assert.InDelta(t, 1500, trend.Months[0].TotalExpense, 1e-9)
	})
}

func TestAnalyzeCategories(t *testing.T) {
	t.Run("empty when nothing was spent", func(t *testing.T) {
		rows := BuildFeatures([]model.Transaction{
			tx("a", day(2025, 1, 5), "Salary", 5000, "Income"),
		})
		breakdown := AnalyzeCategories(rows)
		assert.Empty(t, breakdown.Categories)
		assert.Empty(t, breakdown.TopCategory)
		assert.Zero(t, breakdown.TopPercentage)
	})

	t.Run("sorts by spend descending with top category share", func(t *testing.T) {
		records := []model.Transaction{
			tx("a", day(2025, 1, 5), "Rent", -600, "Housing"),
			tx("b", day(2025, 1, 8), "Groceries", -300, "Food"),
			tx("c", day(2025, 1, 9), "Cinema", -100, "Entertainment"),
		}
		breakdown := AnalyzeCategories(BuildFeatures(records))

		require.Len(t, breakdown.Categories, 3)
		assert.Equal(t, "Housing", breakdown.Categories[0].Category)
		assert.Equal(t, "Housing", breakdown.TopCategory)
		assert.InDelta(t, 600, breakdown.TopAmount, 1e-9)
		assert.InDelta(t, 60, breakdown.TopPercentage, 1e-9)
	})

	t.Run("percentages sum to at most 100", func(t *testing.T) {
		records := []model.Transaction{
			tx("a", day(2025, 1, 1), "A", -33.33, "One"),
			tx("b", day(2025, 1, 2), "B", -33.33, "Two"),
			tx("c", day(2025, 1, 3), "C", -33.34, "Three"),
			tx("d", day(2025, 1, 4), "D", -0.01, "Four"),
		}
		breakdown := AnalyzeCategories(BuildFeatures(records))

		var sum float64
		for _, c := range breakdown.Categories {
			sum += c.Percentage
		}
		assert.LessOrEqual(t, sum, 100.0+1e-6)
		assert.InDelta(t, 100, sum, 1e-6)
	})

	t.Run("blank category reported as Uncategorized", func(t *testing.T) {
		breakdown := AnalyzeCategories(BuildFeatures([]model.Transaction{
			tx("a", day(2025, 1, 5), "Mystery", -50, ""),
		}))
		require.Len(t, breakdown.Categories, 1)
		assert.Equal(t, "Uncategorized", breakdown.Categories[0].Category)
	})
}

func TestLinearRegression(t *testing.T) {
	tests := []struct {
		name      string
		points    []float64
		wantSlope float64
	}{
		{"perfect ascent", []float64{1, 2, 3, 4}, 1},
		{"perfect descent", []float64{4, 3, 2, 1}, -1},
		{"flat", []float64{5, 5, 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slope, _ := linearRegression(tt.points)
			assert.InDelta(t, tt.wantSlope, slope, 1e-9)
		})
	}
}
