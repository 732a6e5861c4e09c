package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/orionfin/orion/backend/internal/model"
)

const (
	transactionsCollection = "transactions"
	auditLogsCollection    = "auditLogs"
)

// FirestoreStore implements the Store interface using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{client: client}
}

// transactionDoc is the Firestore representation of a transaction. Amounts
// are persisted as signed cents to avoid floating-point drift in documents.
type transactionDoc struct {
	ID          string    `firestore:"Id"`
	UserID      string    `firestore:"UserId"`
	Date        time.Time `firestore:"Date"`
	Description string    `firestore:"Description"`
	AmountCents int64     `firestore:"AmountCents"`
	Category    string    `firestore:"Category"`
	CreatedAt   time.Time `firestore:"CreatedAt"`
}

func toDoc(tx *model.Transaction) transactionDoc {
	return transactionDoc{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Date:        tx.Date,
		Description: tx.Description,
		AmountCents: tx.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Category:    tx.Category,
		CreatedAt:   tx.CreatedAt,
	}
}

func fromDoc(doc transactionDoc) model.Transaction {
	return model.Transaction{
		ID:          doc.ID,
		UserID:      doc.UserID,
		Date:        doc.Date,
		Description: doc.Description,
		Amount:      decimal.New(doc.AmountCents, -2),
		Category:    doc.Category,
		CreatedAt:   doc.CreatedAt,
	}
}

// CreateTransaction creates a new transaction document.
func (s *FirestoreStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	_, err := s.client.Collection(transactionsCollection).Doc(tx.ID).Set(ctx, toDoc(tx))
	return err
}

// GetTransaction retrieves a transaction document by ID.
func (s *FirestoreStore) GetTransaction(ctx context.Context, txID string) (*model.Transaction, error) {
	snap, err := s.client.Collection(transactionsCollection).Doc(txID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", txID, ErrNotFound)
	}
	var doc transactionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	tx := fromDoc(doc)
	return &tx, nil
}

// UpdateTransaction replaces an existing transaction document.
func (s *FirestoreStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	_, err := s.client.Collection(transactionsCollection).Doc(tx.ID).Set(ctx, toDoc(tx))
	return err
}

// ListTransactions returns the user's transactions within [start, end],
// ordered by date ascending. Firestore requires OrderBy on the inequality
// field first.
func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error) {
	query := s.client.Collection(transactionsCollection).
		Where("UserId", "==", userID).
		Where("Date", ">=", start).
		Where("Date", "<=", end).
		OrderBy("Date", firestore.Asc)

	return collectTransactions(query.Documents(ctx))
}

// ListUncategorizedTransactions returns the user's transactions whose
// category is unset.
func (s *FirestoreStore) ListUncategorizedTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	query := s.client.Collection(transactionsCollection).
		Where("UserId", "==", userID).
		Where("Category", "in", uncategorizedValues)

	return collectTransactions(query.Documents(ctx))
}

// CreateAuditLog creates a new audit log document.
func (s *FirestoreStore) CreateAuditLog(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.client.Collection(auditLogsCollection).Doc(entry.ID).Set(ctx, entry)
	return err
}

func collectTransactions(iter *firestore.DocumentIterator) ([]model.Transaction, error) {
	defer iter.Stop()

	var result []model.Transaction
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate transactions: %w", err)
		}
		var doc transactionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse transaction %s: %w", snap.Ref.ID, err)
		}
		result = append(result, fromDoc(doc))
	}
	return result, nil
}
