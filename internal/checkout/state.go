// Package checkout drives a product sale from product selection to the
// printed receipt.
//
// A Machine owns one transaction. Transitions are methods on the Machine,
// except Processing -> PaymentSuccess, which fires on its own when the
// countdown elapses. Remote calls made as side effects of a transition are
// best-effort: their failures end up in the transaction status or on the
// Diagnostics channel, and the sale still reaches Printing.
package checkout

import "pos/internal/domain"

// State is a checkout workflow state.
type State string

const (
	StateIdle            State = "IDLE"
	StateProductSelected State = "PRODUCT_SELECTED"
	StateCardPresented   State = "CARD_PRESENTED"
	StateProcessing      State = "PROCESSING"
	StatePaymentSuccess  State = "PAYMENT_SUCCESS"
	StatePrinting        State = "PRINTING"
)

// Terminal reports whether s is the last state of a sale.
func (s State) Terminal() bool {
	return s == StatePrinting
}

// Snapshot is a consistent view of a machine at one instant.
type Snapshot struct {
	State State
	Tx    domain.TransactionContext
}

// Screen returns the front-end route that renders the snapshot.
func (s Snapshot) Screen() string {
	switch s.State {
	case StateProductSelected, StateCardPresented:
		return "/add-product-cardreader"
	case StateProcessing:
		return "/add-product-processing"
	case StatePaymentSuccess:
		if s.Tx.Method == domain.PaymentMethodCard {
			return "/add-product-tap-final"
		}
		return "/add-product-cash-success"
	case StatePrinting:
		return "/add-product-printing"
	default:
		return "/"
	}
}
