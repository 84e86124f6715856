package checkout

import "errors"

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid checkout transition")

	// ErrUnknownProduct is returned when the product is not in the catalog.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrMissingCard is returned when a card is presented without an identifier.
	ErrMissingCard = errors.New("card identifier is required")

	// ErrInvalidPaymentMethod is returned for payment methods other than cash and card.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrAdvanceInProgress is returned when processing can no longer be cancelled.
	ErrAdvanceInProgress = errors.New("payment already being processed")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("checkout closed")
)
