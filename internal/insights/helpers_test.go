package insights

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orionfin/orion/backend/internal/model"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func tx(id string, date time.Time, description string, amount float64, category string) model.Transaction {
	return model.Transaction{
		ID:          id,
		UserID:      "user-1",
		Date:        date,
		Description: description,
		Amount:      decimal.NewFromFloat(amount),
		Category:    category,
	}
}

// monthlySeries builds one expense of the given amount per month, starting
// at the given month, oldest first.
func monthlySeries(start time.Time, months int, amount float64) []model.Transaction {
	var records []model.Transaction
	for i := 0; i < months; i++ {
		records = append(records, tx(
			fmt.Sprintf("tx-%d", i),
			start.AddDate(0, i, 0),
			"Groceries",
			amount,
			"Food",
		))
	}
	return records
}
