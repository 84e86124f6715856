package service

import (
	"fmt"
	"strings"

	"pos/internal/domain"
)

// ReceiptService renders receipts for the printer.
type ReceiptService struct {
	terminal Terminal
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(terminal Terminal) *ReceiptService {
	return &ReceiptService{terminal: terminal}
}

// FormatReceipt formats the receipt as printer text.
func (s *ReceiptService) FormatReceipt(receipt domain.Receipt) string {
	operator := receipt.Operator
	if operator == "" {
		operator = "-"
	}

	var b strings.Builder
	b.WriteString("=====================================\n")
	b.WriteString("        TRANSIT CARD RECEIPT\n")
	b.WriteString("=====================================\n")
	fmt.Fprintf(&b, "Receipt ID: %s\n", receipt.ReceiptID)
	fmt.Fprintf(&b, "Date: %s  Time: %s\n", receipt.Date, receipt.Time)
	fmt.Fprintf(&b, "Terminal: %s (%s)\n", s.terminal.Location, s.terminal.DeviceID)
	b.WriteString("\nSALE\n")
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "Card:     %s\n", maskCard(receipt.CardID))
	fmt.Fprintf(&b, "Product:  %s\n", receipt.Product)
	fmt.Fprintf(&b, "Operator: %s\n", operator)
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "TOTAL:    %s\n", receipt.Amount.String())
	fmt.Fprintf(&b, "Paid by:  %s\n", paymentLabel(receipt.Method))
	b.WriteString("=====================================\n")
	b.WriteString("     Thank you for riding with us!\n")
	b.WriteString("=====================================\n")
	return b.String()
}

// maskCard keeps the last four characters of long card numbers.
func maskCard(cardID string) string {
	if len(cardID) <= 8 {
		return cardID
	}
	return strings.Repeat("*", len(cardID)-4) + cardID[len(cardID)-4:]
}

func paymentLabel(method domain.PaymentMethod) string {
	switch method {
	case domain.PaymentMethodCard:
		return "Card"
	case domain.PaymentMethodCash:
		return "Cash"
	default:
		return string(method)
	}
}
