package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionfin/orion/backend/internal/model"
)

func newTx(id, userID string, date time.Time, description string, amount float64, category string) *model.Transaction {
	return &model.Transaction{
		ID:          id,
		UserID:      userID,
		Date:        date,
		Description: description,
		Amount:      decimal.NewFromFloat(amount),
		Category:    category,
	}
}

func TestMemoryStoreTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns ID and timestamp", func(t *testing.T) {
		s := NewMemoryStore()
		tx := newTx("", "user-1", time.Now(), "Coffee", -4.50, "Food")

		require.NoError(t, s.CreateTransaction(ctx, tx))
		assert.NotEmpty(t, tx.ID)
		assert.False(t, tx.CreatedAt.IsZero())

		got, err := s.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, "Coffee", got.Description)
	})

	t.Run("get unknown ID is not found", func(t *testing.T) {
		s := NewMemoryStore()
		_, err := s.GetTransaction(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update replaces the stored record", func(t *testing.T) {
		s := NewMemoryStore()
		tx := newTx("tx-1", "user-1", time.Now(), "Coffee", -4.50, "")
		require.NoError(t, s.CreateTransaction(ctx, tx))

		tx.Category = "Food & Dining"
		require.NoError(t, s.UpdateTransaction(ctx, tx))

		got, err := s.GetTransaction(ctx, "tx-1")
		require.NoError(t, err)
		assert.Equal(t, "Food & Dining", got.Category)
	})

	t.Run("update unknown ID is not found", func(t *testing.T) {
		s := NewMemoryStore()
		err := s.UpdateTransaction(ctx, newTx("missing", "user-1", time.Now(), "x", -1, ""))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.CreateTransaction(ctx, newTx("tx-1", "user-1", time.Now(), "Coffee", -4.50, "Food")))

		got, err := s.GetTransaction(ctx, "tx-1")
		require.NoError(t, err)
		got.Description = "mutated"

		fresh, err := s.GetTransaction(ctx, "tx-1")
		require.NoError(t, err)
		assert.Equal(t, "Coffee", fresh.Description)
	})
}

func TestMemoryStoreListTransactions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateTransaction(ctx, newTx("b", "user-1", feb, "Feb", -20, "Food")))
	require.NoError(t, s.CreateTransaction(ctx, newTx("a", "user-1", jan, "Jan", -10, "Food")))
	require.NoError(t, s.CreateTransaction(ctx, newTx("c", "user-1", mar, "Mar", -30, "Food")))
	require.NoError(t, s.CreateTransaction(ctx, newTx("other", "user-2", feb, "Other", -99, "Food")))

	t.Run("scopes to user and orders by date", func(t *testing.T) {
		got, err := s.ListTransactions(ctx, "user-1", jan, mar)
		require.NoError(t, err)

		require.Len(t, got, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		got, err := s.ListTransactions(ctx, "user-1", jan, feb)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
	})

	t.Run("empty window yields empty result", func(t *testing.T) {
		got, err := s.ListTransactions(ctx, "user-1", mar.AddDate(0, 1, 0), mar.AddDate(0, 2, 0))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemoryStoreListUncategorized(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now()
	require.NoError(t, s.CreateTransaction(ctx, newTx("a", "user-1", now.Add(-2*time.Hour), "Blank", -10, "")))
	require.NoError(t, s.CreateTransaction(ctx, newTx("b", "user-1", now.Add(-1*time.Hour), "Placeholder", -20, "Uncategorized")))
	require.NoError(t, s.CreateTransaction(ctx, newTx("c", "user-1", now, "Done", -30, "Food & Dining")))
	require.NoError(t, s.CreateTransaction(ctx, newTx("d", "user-2", now, "Other user", -40, "")))

	got, err := s.ListUncategorizedTransactions(ctx, "user-1")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestIsUncategorized(t *testing.T) {
	assert.True(t, IsUncategorized(""))
	assert.True(t, IsUncategorized("Uncategorized"))
	assert.False(t, IsUncategorized("Food & Dining"))
}

func TestMemoryStoreAuditLogs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := &model.AuditLog{
		UserID:    "user-1",
		Action:    "auto_categorize",
		EntityID:  "tx-1",
		CreatedAt: time.Now().Add(-time.Minute),
	}
	second := &model.AuditLog{
		UserID:    "user-1",
		Action:    "auto_categorize",
		EntityID:  "tx-2",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateAuditLog(ctx, first))
	require.NoError(t, s.CreateAuditLog(ctx, second))
	require.NoError(t, s.CreateAuditLog(ctx, &model.AuditLog{UserID: "user-2", Action: "auto_categorize"}))

	assert.NotEmpty(t, first.ID)

	logs := s.ListAuditLogs("user-1")
	require.Len(t, logs, 2)
	assert.Equal(t, "tx-2", logs[0].EntityID)
	assert.Equal(t, "tx-1", logs[1].EntityID)
}
