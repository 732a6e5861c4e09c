package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionfin/orion/backend/internal/model"
)

// intervalSeries builds n expenses with a fixed gap in days.
func intervalSeries(desc string, amount float64, start time.Time, n, gapDays int) []model.Transaction {
	var records []model.Transaction
	for i := 0; i < n; i++ {
		records = append(records, tx(
			desc+"-"+string(rune('a'+i)),
			start.AddDate(0, 0, i*gapDays),
			desc, amount, "Entertainment",
		))
	}
	return records
}

func TestFindRecurring(t *testing.T) {
	t.Run("detects monthly subscription", func(t *testing.T) {
		records := intervalSeries("Netflix", -15.99, day(2025, 1, 5), 3, 30)

		groups := FindRecurring(records)
		require.Len(t, groups, 1)

		g := groups[0]
		assert.Equal(t, "Netflix", g.Description)
		assert.InDelta(t, -15.99, g.Amount, 1e-9)
		assert.Equal(t, 30, g.IntervalDays)
		assert.Equal(t, 3, g.OccurrenceCount)

		last := day(2025, 1, 5).AddDate(0, 0, 60)
		assert.Equal(t, last.AddDate(0, 0, 30).Format("2006-01-02"), g.NextExpectedDate)
	})

	t.Run("groups across description noise", func(t *testing.T) {
		records := []model.Transaction{
			tx("a", day(2025, 1, 5), "NETFLIX.COM 0231", -15.99, "Entertainment"),
			tx("b", day(2025, 2, 4), "netflix.com", -15.99, "Entertainment"),
			tx("c", day(2025, 3, 6), "Netflix.Com #99", -15.99, "Entertainment"),
		}
		groups := FindRecurring(records)
		require.Len(t, groups, 1)
		assert.Equal(t, 3, groups[0].OccurrenceCount)
	})

	t.Run("different amounts stay separate", func(t *testing.T) {
		records := intervalSeries("Gym", -40, day(2025, 1, 1), 3, 30)
		records = append(records, intervalSeries("Gym", -45, day(2025, 1, 2), 2, 30)...)

		groups := FindRecurring(records)
		require.Len(t, groups, 1)
		assert.InDelta(t, -40, groups[0].Amount, 1e-9)
	})

	t.Run("rejects fewer than three occurrences", func(t *testing.T) {
		assert.Empty(t, FindRecurring(intervalSeries("Netflix", -15.99, day(2025, 1, 5), 2, 30)))
	})

	t.Run("rejects weekly interval", func(t *testing.T) {
		assert.Empty(t, FindRecurring(intervalSeries("Coffee", -5, day(2025, 1, 1), 6, 7)))
	})

	t.Run("rejects irregular gaps", func(t *testing.T) {
		records := []model.Transaction{
			tx("a", day(2025, 1, 1), "Shop", -25, "Shopping"),
			tx("b", day(2025, 1, 31), "Shop", -25, "Shopping"),
			tx("c", day(2025, 4, 15), "Shop", -25, "Shopping"),
		}
		assert.Empty(t, FindRecurring(records))
	})

	t.Run("tolerates small gap drift", func(t *testing.T) {
		records := []model.Transaction{
			tx("a", day(2025, 1, 5), "Spotify", -9.99, "Entertainment"),
			tx("b", day(2025, 2, 3), "Spotify", -9.99, "Entertainment"), // 29 days
			tx("c", day(2025, 3, 7), "Spotify", -9.99, "Entertainment"), // 32 days
		}
		groups := FindRecurring(records)
		require.Len(t, groups, 1)
		assert.Equal(t, 32, groups[0].IntervalDays)
	})

	t.Run("ignores income", func(t *testing.T) {
		assert.Empty(t, FindRecurring(intervalSeries("Salary", 5000, day(2025, 1, 1), 4, 30)))
	})

	t.Run("results sorted by description", func(t *testing.T) {
		records := intervalSeries("Spotify", -9.99, day(2025, 1, 2), 3, 30)
		records = append(records, intervalSeries("Netflix", -15.99, day(2025, 1, 5), 3, 30)...)

		groups := FindRecurring(records)
		require.Len(t, groups, 2)
		assert.Equal(t, "Netflix", groups[0].Description)
		assert.Equal(t, "Spotify", groups[1].Description)
	})
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"NETFLIX.COM 0231", "netflixcom"},
		{"Netflix", "netflix"},
		{"  Corner Cafe #42  ", "corner cafe"},
		{"12345", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDescription(tt.in), tt.in)
	}
}

func TestMedianGap(t *testing.T) {
	assert.Equal(t, 30, medianGap([]int{28, 30, 31}))
	assert.Equal(t, 31, medianGap([]int{30, 31}))
	assert.Equal(t, 30, medianGap([]int{30}))
}
