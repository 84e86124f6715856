package domain

import "time"

// TerminalLocation is the entry and exit location recorded for POS sales.
const TerminalLocation = "POS Terminal"

// Transit modes recorded on trip records.
const (
	TransitModeCash = "Cash Payment"
	TransitModeCard = "Card Payment"
)

// TripRecord is the CRM-side log entry for one product sale. It is written
// once and never read back.
type TripRecord struct {
	ID            string  `json:"id"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	EntryLocation string  `json:"entry_location"`
	ExitLocation  string  `json:"exit_location"`
	Fare          float64 `json:"fare"`
	Route         string  `json:"route"`
	Operator      string  `json:"operator"`
	TransitMode   string  `json:"transit_mode"`
	Adjustable    string  `json:"adjustable"`
	CardID        string  `json:"card_id"`
}

// NewTripRecord assembles the trip record for tx ending at endTime. It
// returns false when the card, product or start time is missing.
func NewTripRecord(tx TransactionContext, endTime time.Time) (TripRecord, bool) {
	if tx.CardID == "" || tx.Product == nil || !tx.HasStartTime() {
		return TripRecord{}, false
	}

	mode, adjustable := TransitModeCash, "No"
	if tx.Method == PaymentMethodCard {
		mode, adjustable = TransitModeCard, "Yes"
	}

	return TripRecord{
		ID:            tx.ReceiptID,
		StartTime:     tx.StartTime.UTC().Format(time.RFC3339),
		EndTime:       endTime.UTC().Format(time.RFC3339),
		EntryLocation: TerminalLocation,
		ExitLocation:  TerminalLocation,
		Fare:          tx.Price().Float(),
		Route:         tx.Product.Title,
		Operator:      tx.Operator,
		TransitMode:   mode,
		Adjustable:    adjustable,
		CardID:        tx.CardID,
	}, true
}
