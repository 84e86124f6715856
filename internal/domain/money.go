package domain

import "github.com/shopspring/decimal"

// Price wraps a decimal amount for the places that need both the exact value
// and the float the CRM expects on the wire.
type Price struct {
	decimal.Decimal
}

// Float returns the amount as a float64 for JSON payloads.
func (p Price) Float() float64 {
	return p.InexactFloat64()
}

// String renders the price as "$25.00".
func (p Price) String() string {
	return FormatMoney(p.Decimal)
}
