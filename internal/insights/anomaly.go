package insights

import (
	"math"

	"github.com/google/uuid"

	"github.com/orionfin/orion/backend/internal/model"
)

const (
	// minRuleExpenses is the minimum expense count for the z-score pass.
	minRuleExpenses = 5
	// minModelExpenses is the minimum expense count for the model pass.
	minModelExpenses = 10
	// contaminationRate is the expected fraction of expenses treated as
	// outliers by the model pass.
	contaminationRate = 0.10

	modelAnomalyReason = "Unusual spending pattern detected"
	ruleAnomalyReason  = "Amount exceeds three standard deviations above average spending"
)

// AnomalyFinding is a user-facing alert for one unusual expense. Findings
// are produced once and never mutated.
type AnomalyFinding struct {
	ID            string  `json:"id"`
	TransactionID string  `json:"transaction_id"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category"`
	Reason        string  `json:"reason"`
}

// DetectAmountOutliers flags expenses whose absolute amount exceeds three
// sample standard deviations above the mean. It returns nothing when fewer
// than 5 expense rows exist or when all amounts are identical.
func DetectAmountOutliers(rows []FeatureRow) []AnomalyFinding {
	expenses := expenseRows(rows)
	if len(expenses) < minRuleExpenses {
		return nil
	}

	var sum float64
	for _, r := range expenses {
		sum += r.AbsAmount
	}
	mean := sum / float64(len(expenses))

	var varianceSum float64
	for _, r := range expenses {
		diff := r.AbsAmount - mean
		varianceSum += diff * diff
	}
	stddev := math.Sqrt(varianceSum / float64(len(expenses)-1))
	if stddev == 0 {
		return nil
	}

	threshold := mean + 3*stddev
	var findings []AnomalyFinding
	for _, r := range expenses {
		if r.AbsAmount > threshold {
			findings = append(findings, newFinding(r, ruleAnomalyReason))
		}
	}
	return findings
}

// DetectAnomalies runs the model-based outlier pass over the snapshot's
// expenses: each expense becomes a 2-D feature vector (absolute amount,
// days since the prior transaction), standardized, then scored by an
// isolation forest seeded for reproducibility. Roughly 10% of rows are
// flagged. Fewer than 10 expense rows yields an empty result, and a failure
// in the model path degrades to the rule-based pass.
func (e *Engine) DetectAnomalies(records []model.Transaction) []AnomalyFinding {
	rows := BuildFeatures(records)
	return e.detectModelAnomalies(rows)
}

func (e *Engine) detectModelAnomalies(rows []FeatureRow) (findings []AnomalyFinding) {
	expenses := expenseRows(rows)
	if len(expenses) < minModelExpenses {
		return nil
	}

	// Numerical failure in the fit must never reach the caller.
	defer func() {
		if r := recover(); r != nil {
			findings = DetectAmountOutliers(rows)
		}
	}()

	features := make([][]float64, len(expenses))
	for i, r := range expenses {
		gap := 0.0
		if r.HasPrior {
			gap = float64(r.DaysSincePrior)
		}
		features[i] = []float64{r.AbsAmount, gap}
	}
	standardize(features)

	forest := newIsolationForest(e.seed, defaultTrees, defaultSampleSize)
	if !forest.fit(features) {
		// Degenerate feature space: every vector identical.
		return nil
	}

	scores := make([]float64, len(features))
	for i, x := range features {
		scores[i] = forest.score(x)
	}

	for _, idx := range topFraction(scores, contaminationRate) {
		findings = append(findings, newFinding(expenses[idx], modelAnomalyReason))
	}
	return findings
}

func newFinding(r FeatureRow, reason string) AnomalyFinding {
	return AnomalyFinding{
		ID:            uuid.New().String(),
		TransactionID: r.ID,
		Date:          r.Date.Format("2006-01-02"),
		Description:   r.Description,
		Amount:        r.Amount.InexactFloat64(),
		Category:      categoryOrDefault(r.Category),
		Reason:        reason,
	}
}

// standardize rescales each feature dimension in place to zero mean and
// unit variance. A zero-variance dimension is centered only.
func standardize(features [][]float64) {
	if len(features) == 0 {
		return
	}
	dims := len(features[0])
	n := float64(len(features))

	for d := 0; d < dims; d++ {
		var sum float64
		for _, x := range features {
			sum += x[d]
		}
		mean := sum / n

		var varianceSum float64
		for _, x := range features {
			diff := x[d] - mean
			varianceSum += diff * diff
		}
		stddev := math.Sqrt(varianceSum / n)

		for _, x := range features {
			x[d] -= mean
			if stddev > 0 {
				x[d] /= stddev
			}
		}
	}
}

// topFraction returns the indexes of the highest-scoring fraction of rows,
// in ascending row order. At least one row is returned for a positive
// fraction.
func topFraction(scores []float64, fraction float64) []int {
	k := int(math.Ceil(fraction * float64(len(scores))))
	if k <= 0 {
		return nil
	}
	if k > len(scores) {
		k = len(scores)
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	// Selection by score descending; ties broken by row order for
	// deterministic output.
	for i := 0; i < k; i++ {
		best := i
		for j := i + 1; j < len(idx); j++ {
			if scores[idx[j]] > scores[idx[best]] {
				best = j
			}
		}
		idx[i], idx[best] = idx[best], idx[i]
	}

	top := make([]int, k)
	copy(top, idx[:k])
	// Ascending row order keeps output aligned with the snapshot.
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			if top[j] < top[i] {
				top[i], top[j] = top[j], top[i]
			}
		}
	}
	return top
}
