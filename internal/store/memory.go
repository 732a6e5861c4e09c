package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orionfin/orion/backend/internal/model"
)

// MemoryStore implements Store with in-memory storage. It is used for local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]*model.Transaction
	auditLogs    map[string]*model.AuditLog
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*model.Transaction),
		auditLogs:    make(map[string]*model.AuditLog),
	}
}

// CreateTransaction stores a new transaction, assigning an ID if unset.
func (s *MemoryStore) CreateTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	cp := *tx
	s.transactions[tx.ID] = &cp
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *MemoryStore) GetTransaction(_ context.Context, txID string) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", txID, ErrNotFound)
	}
	cp := *tx
	return &cp, nil
}

// UpdateTransaction replaces an existing transaction.
func (s *MemoryStore) UpdateTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrNotFound)
	}
	cp := *tx
	s.transactions[tx.ID] = &cp
	return nil
}

// ListTransactions returns the user's transactions within [start, end],
// ordered by date ascending.
func (s *MemoryStore) ListTransactions(_ context.Context, userID string, start, end time.Time) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		result = append(result, *tx)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// ListUncategorizedTransactions returns the user's transactions whose
// category is unset, ordered by date ascending.
func (s *MemoryStore) ListUncategorizedTransactions(_ context.Context, userID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID || !IsUncategorized(tx.Category) {
			continue
		}
		result = append(result, *tx)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// CreateAuditLog stores an audit entry, assigning an ID if unset.
func (s *MemoryStore) CreateAuditLog(_ context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	cp := *entry
	s.auditLogs[entry.ID] = &cp
	return nil
}

// ListAuditLogs returns all audit entries for a user, newest first. Test and
// tooling helper, not part of the Store interface.
func (s *MemoryStore) ListAuditLogs(userID string) []model.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.AuditLog
	for _, entry := range s.auditLogs {
		if entry.UserID == userID {
			result = append(result, *entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
