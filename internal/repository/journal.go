package repository

import (
	"context"

	"pos/internal/domain"
)

// ReceiptJournal defines the persistence operations for printed receipts.
type ReceiptJournal interface {
	// Record stores a printed receipt. Recording the same receipt id twice
	// keeps the first entry.
	Record(ctx context.Context, transactionID string, receipt domain.Receipt) error

	// GetByReceiptID retrieves a printed receipt by its receipt id.
	GetByReceiptID(ctx context.Context, receiptID string) (*domain.Receipt, error)

	// List retrieves the most recently printed receipts, newest first.
	List(ctx context.Context, limit int) ([]*domain.Receipt, error)
}
