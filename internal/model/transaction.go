// Package model defines the value types shared between the store and the
// insights engine. Transactions are immutable once analyzed: the engine never
// mutates a record, and amounts are carried as exact decimals until a
// computation needs a float.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single dated ledger entry. Amount is signed: negative
// values are expenses, positive values are income. Amount is never zero.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// AuditLog records a single automated action taken against a transaction,
// e.g. a category assignment. Writes are fire-and-forget from the caller's
// perspective.
type AuditLog struct {
	ID        string    `json:"id" firestore:"Id"`
	UserID    string    `json:"user_id" firestore:"UserId"`
	Action    string    `json:"action" firestore:"Action"`
	EntityID  string    `json:"entity_id" firestore:"EntityId"`
	Detail    string    `json:"detail" firestore:"Detail"`
	CreatedAt time.Time `json:"created_at" firestore:"CreatedAt"`
}
