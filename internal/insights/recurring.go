package insights

import (
	"sort"
	"strings"
	"unicode"

	"github.com/orionfin/orion/backend/internal/model"
)

const (
	// minOccurrences is the smallest group size considered for recurrence.
	minOccurrences = 3
	// gapTolerance is how far (in days) any gap may stray from the median.
	gapTolerance = 5
	// Monthly-ish interval bounds in days.
	minIntervalDays = 20
	maxIntervalDays = 45
)

// RecurringGroup is a set of expenses judged to represent the same periodic
// payment, with its predicted next occurrence.
type RecurringGroup struct {
	Description      string  `json:"description"`
	Amount           float64 `json:"amount"`
	IntervalDays     int     `json:"interval_days"`
	NextExpectedDate string  `json:"next_expected_date"`
	OccurrenceCount  int     `json:"occurrence_count"`
}

// FindRecurring detects approximately monthly recurring payments. Expenses
// are grouped by normalized description and 2-decimal amount; a group is
// accepted only when it has at least 3 occurrences, every gap between
// consecutive occurrences is within ±5 days of the median gap, and the
// median gap is 20–45 days. Groups failing either test are silently
// omitted: false recurring alerts cost more than missed ones.
func FindRecurring(records []model.Transaction) []RecurringGroup {
	type groupKey struct {
		description string
		amount      string
	}
	groups := make(map[groupKey][]model.Transaction)
	for _, tx := range records {
		if !tx.IsExpense() {
			continue
		}
		key := groupKey{
			description: normalizeDescription(tx.Description),
			amount:      tx.Amount.Round(2).String(),
		}
		groups[key] = append(groups[key], tx)
	}

	var results []RecurringGroup
	for _, members := range groups {
		if len(members) < minOccurrences {
			continue
		}

		sort.Slice(members, func(i, j int) bool {
			return members[i].Date.Before(members[j].Date)
		})

		gaps := make([]int, 0, len(members)-1)
		for i := 1; i < len(members); i++ {
			gaps = append(gaps, daysBetween(members[i-1].Date, members[i].Date))
		}
		if len(gaps) < 2 {
			continue
		}

		median := medianGap(gaps)
		if median < minIntervalDays || median > maxIntervalDays {
			continue
		}
		regular := true
		for _, g := range gaps {
			if abs(g-median) > gapTolerance {
				regular = false
				break
			}
		}
		if !regular {
			continue
		}

		last := members[len(members)-1]
		results = append(results, RecurringGroup{
			Description:      members[0].Description,
			Amount:           members[0].Amount.Round(2).InexactFloat64(),
			IntervalDays:     median,
			NextExpectedDate: last.Date.AddDate(0, 0, median).Format("2006-01-02"),
			OccurrenceCount:  len(members),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Description != results[j].Description {
			return results[i].Description < results[j].Description
		}
		return results[i].Amount < results[j].Amount
	})
	return results
}

// normalizeDescription lower-cases a description and strips every character
// that is not a letter or whitespace, so "NETFLIX.COM 123" and "Netflix"
// group together.
func normalizeDescription(description string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(description) {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// medianGap returns the upper median of the gap list.
func medianGap(gaps []int) int {
	sorted := make([]int, len(gaps))
	copy(sorted, gaps)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
