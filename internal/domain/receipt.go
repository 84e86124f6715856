package domain

import "time"

// Receipt is the printed view of a completed transaction.
type Receipt struct {
	ReceiptID string
	CardID    string
	Product   string
	Amount    Price
	Method    PaymentMethod
	Operator  string
	Date      string // DD/MM/YYYY
	Time      string // HH:MM, 24-hour
	PrintedAt time.Time
}

// NewReceipt builds the receipt for tx printed at now. A transaction that
// never received a receipt id gets a fresh one here.
func NewReceipt(tx TransactionContext, now time.Time) Receipt {
	id := tx.ReceiptID
	if id == "" {
		id = NewReceiptID()
	}
	return Receipt{
		ReceiptID: id,
		CardID:    tx.CardID,
		Product:   tx.ProductTitle(),
		Amount:    tx.Price(),
		Method:    tx.Method,
		Operator:  tx.Operator,
		Date:      now.Format("02/01/2006"),
		Time:      now.Format("15:04"),
		PrintedAt: now,
	}
}
