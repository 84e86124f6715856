package crm

import (
	"context"
	"net/http"
)

// PaymentResult is the response of POST /payment/simulate.
type PaymentResult struct {
	Status  string  `json:"status"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
	Message string  `json:"message"`
}

// SimulatePayment runs a simulated payment against a card.
func (c *Client) SimulatePayment(ctx context.Context, cardID string, amount float64, method string) (*PaymentResult, error) {
	body := struct {
		CardID string  `json:"card_id"`
		Amount float64 `json:"amount"`
		Method string  `json:"method"`
	}{CardID: cardID, Amount: amount, Method: method}

	var result PaymentResult
	if err := c.Do(ctx, http.MethodPost, "/payment/simulate", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
