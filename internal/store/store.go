package store

import (
	"context"
	"errors"
	"time"

	"github.com/orionfin/orion/backend/internal/model"
)

// ErrNotFound is returned when a requested transaction does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the database operations used by the insights service. The
// engine itself never touches the store: it consumes a snapshot the service
// fetched via ListTransactions.
type Store interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransaction(ctx context.Context, txID string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error)
	ListUncategorizedTransactions(ctx context.Context, userID string) ([]model.Transaction, error)

	// Audit operations
	CreateAuditLog(ctx context.Context, entry *model.AuditLog) error
}

// uncategorizedValues are the category values treated as "not yet categorized".
var uncategorizedValues = []string{"", "Uncategorized"}

// IsUncategorized reports whether a category value counts as unset.
func IsUncategorized(category string) bool {
	for _, v := range uncategorizedValues {
		if category == v {
			return true
		}
	}
	return false
}
