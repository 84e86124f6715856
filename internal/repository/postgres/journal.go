package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"pos/internal/domain"
	"pos/internal/repository"
)

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 100

// Querier runs journal statements. *sql.DB and *sql.Tx both satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ReceiptJournal is a PostgreSQL implementation of repository.ReceiptJournal.
type ReceiptJournal struct {
	q Querier
}

// NewReceiptJournal creates a new PostgreSQL receipt journal.
func NewReceiptJournal(db *sql.DB) *ReceiptJournal {
	return &ReceiptJournal{q: db}
}

// Record stores a printed receipt.
func (r *ReceiptJournal) Record(ctx context.Context, transactionID string, receipt domain.Receipt) error {
	query := `
		INSERT INTO receipt_journal (receipt_id, transaction_id, card_id, product, amount, payment_method, operator, printed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (receipt_id) DO NOTHING
	`

	_, err := r.q.ExecContext(ctx, query,
		receipt.ReceiptID,
		transactionID,
		receipt.CardID,
		receipt.Product,
		receipt.Amount.StringFixed(2),
		string(receipt.Method),
		receipt.Operator,
		receipt.PrintedAt.UTC(),
	)

	return err
}

// GetByReceiptID retrieves a printed receipt by its receipt id.
func (r *ReceiptJournal) GetByReceiptID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	query := `
		SELECT receipt_id, card_id, product, amount, payment_method, operator, printed_at
		FROM receipt_journal WHERE receipt_id = $1
	`

	receipt, err := scanReceipt(r.q.QueryRowContext(ctx, query, receiptID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return receipt, nil
}

// List retrieves the most recently printed receipts, newest first.
func (r *ReceiptJournal) List(ctx context.Context, limit int) ([]*domain.Receipt, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	query := `
		SELECT receipt_id, card_id, product, amount, payment_method, operator, printed_at
		FROM receipt_journal ORDER BY printed_at DESC LIMIT $1
	`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*domain.Receipt
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}

	return receipts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(s scanner) (*domain.Receipt, error) {
	var receipt domain.Receipt
	var amount string
	var method string

	if err := s.Scan(
		&receipt.ReceiptID,
		&receipt.CardID,
		&receipt.Product,
		&amount,
		&method,
		&receipt.Operator,
		&receipt.PrintedAt,
	); err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	receipt.Amount = domain.Price{Decimal: value}
	receipt.Method = domain.PaymentMethod(method)
	receipt.Date = receipt.PrintedAt.Format("02/01/2006")
	receipt.Time = receipt.PrintedAt.Format("15:04")

	return &receipt, nil
}

// Ensure interface is satisfied.
var _ repository.ReceiptJournal = (*ReceiptJournal)(nil)
