package service

import (
	"errors"
	"fmt"
)

var (
	// ErrTransactionNotFound is returned when a checkout transaction id is unknown.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrCardBusy is returned when another open transaction holds the card.
	ErrCardBusy = errors.New("card is in use by another transaction")

	// ErrReceiptNotFound is returned when a receipt is not in the journal.
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrJournalUnavailable is returned when no receipt journal is configured.
	ErrJournalUnavailable = errors.New("receipt journal unavailable")

	// ErrCardRejected is returned when the CRM accepts a card request but
	// sends back no card identifier.
	ErrCardRejected = errors.New("card was not issued")

	// ErrNotAuthenticated is returned when no operator is logged in.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError reports a form field that blocks submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}
