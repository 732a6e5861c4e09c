// Package categorize assigns spending categories to transactions whose
// category is unset, using keyword rules over the description. Each applied
// assignment is recorded to the audit log; audit failures are logged and
// never block categorization.
package categorize

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/orionfin/orion/backend/internal/model"
	"github.com/orionfin/orion/backend/internal/store"
)

// FallbackCategory is assigned when no keyword rule matches.
const FallbackCategory = "Miscellaneous"

// categoryRule maps description keywords to a category. Rules are checked
// in order; the first match wins.
type categoryRule struct {
	keywords []string
	category string
}

var rules = []categoryRule{
	{[]string{"netflix", "spotify", "disney", "hulu"}, "Entertainment"},
	{[]string{"uber", "lyft", "taxi", "train", "bus"}, "Transportation"},
	{[]string{"mcdonalds", "starbucks", "restaurant", "cafe"}, "Food & Dining"},
	{[]string{"walmart", "target", "amazon"}, "Shopping"},
	{[]string{"electric", "water", "gas", "utility"}, "Utilities"},
}

var titleCaser = cases.Title(language.English)

// Classify returns the category for a transaction description.
func Classify(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return FallbackCategory
}

// Canonical normalizes a free-form category value to title case, so
// "groceries" and "GROCERIES" aggregate together.
func Canonical(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(trimmed))
}

// Categorizer applies keyword categorization against the store.
type Categorizer struct {
	store store.Store
	log   zerolog.Logger
}

// New creates a Categorizer.
func New(st store.Store, log zerolog.Logger) *Categorizer {
	return &Categorizer{store: st, log: log}
}

// CategorizeForUser categorizes the given transactions, or every
// uncategorized transaction for the user when txIDs is empty. It returns
// the number of transactions updated. Transactions that already carry a
// category are canonicalized instead, so "groceries" and "GROCERIES"
// aggregate together; records already in canonical form are left untouched.
func (c *Categorizer) CategorizeForUser(ctx context.Context, userID string, txIDs []string) (int, error) {
	var candidates []model.Transaction
	if len(txIDs) > 0 {
		for _, id := range txIDs {
			tx, err := c.store.GetTransaction(ctx, id)
			if err != nil {
				return 0, err
			}
			if tx.UserID == userID {
				candidates = append(candidates, *tx)
			}
		}
	} else {
		var err error
		candidates, err = c.store.ListUncategorizedTransactions(ctx, userID)
		if err != nil {
			return 0, err
		}
	}

	updated := 0
	for _, tx := range candidates {
		if store.IsUncategorized(tx.Category) {
			tx.Category = Classify(tx.Description)
		} else {
			canonical := Canonical(tx.Category)
			if canonical == tx.Category {
				continue
			}
			tx.Category = canonical
		}
		if err := c.store.UpdateTransaction(ctx, &tx); err != nil {
			return updated, err
		}
		updated++
		c.recordAudit(ctx, tx)
	}
	return updated, nil
}

// recordAudit writes the categorization action to the audit sink
// fire-and-forget.
func (c *Categorizer) recordAudit(ctx context.Context, tx model.Transaction) {
	entry := &model.AuditLog{
		UserID:   tx.UserID,
		Action:   "auto_categorize",
		EntityID: tx.ID,
		Detail:   "assigned category " + tx.Category,
	}
	go func(ctx context.Context) {
		if err := c.store.CreateAuditLog(ctx, entry); err != nil {
			c.log.Warn().Err(err).Str("transaction_id", entry.EntityID).Msg("failed to write audit log")
		}
	}(context.WithoutCancel(ctx))
}
