package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// PaymentMethod is how the customer pays for a product load.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

// TransactionContext is the state threaded through the checkout workflow.
// It is a value: every transition produces a new copy.
type TransactionContext struct {
	ID        string
	CardID    string
	Product   *Product
	Method    PaymentMethod
	StartTime time.Time // zero when the card was never presented
	ReceiptID string
	Operator  string
	Status    string
	Countdown int // seconds left while processing
}

// Price returns the resolved price of the selected product, or the default
// price when none is selected.
func (t TransactionContext) Price() Price {
	if t.Product == nil {
		return Price{DefaultPrice}
	}
	return Price{t.Product.Price}
}

// HasStartTime reports whether a start time was captured.
func (t TransactionContext) HasStartTime() bool {
	return !t.StartTime.IsZero()
}

// ProductTitle returns the selected product title or "".
func (t TransactionContext) ProductTitle() string {
	if t.Product == nil {
		return ""
	}
	return t.Product.Title
}

// WithProduct returns a copy with the product selected.
func (t TransactionContext) WithProduct(p Product) TransactionContext {
	t.Product = &p
	return t
}

// WithCard returns a copy with the card presented at startTime.
func (t TransactionContext) WithCard(cardID string, startTime time.Time) TransactionContext {
	t.CardID = cardID
	t.StartTime = startTime
	return t
}

// WithMethod returns a copy with the payment method set.
func (t TransactionContext) WithMethod(m PaymentMethod) TransactionContext {
	t.Method = m
	return t
}

// WithStatus returns a copy with the display status set.
func (t TransactionContext) WithStatus(status string) TransactionContext {
	t.Status = status
	return t
}

// WithCountdown returns a copy with the remaining countdown seconds set.
func (t TransactionContext) WithCountdown(seconds int) TransactionContext {
	t.Countdown = seconds
	return t
}

// WithReceiptID returns a copy with id assigned, unless a receipt id is
// already present.
func (t TransactionContext) WithReceiptID(id string) TransactionContext {
	if t.ReceiptID == "" {
		t.ReceiptID = id
	}
	return t
}

// WithOperator returns a copy with the operator name set.
func (t TransactionContext) WithOperator(operator string) TransactionContext {
	t.Operator = operator
	return t
}

// NewReceiptID returns "RID" followed by a three-digit number in [100, 999].
func NewReceiptID() string {
	return fmt.Sprintf("RID%d", 100+rand.Intn(900))
}
