package crm

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"

	"pos/internal/domain"
)

// IssueCardRequest is the body of POST /cards/issue.
type IssueCardRequest struct {
	CardID     string `json:"card_id"`
	CardType   string `json:"card_type"`
	CustomerID string `json:"customer_id"`
	IssueDate  string `json:"issue_date"`
}

// IssuedCard is the CRM record returned for an issued card. Depending on the
// CRM version the identifier arrives as "id" or "card_id".
type IssuedCard struct {
	ID         string  `json:"id"`
	CardID     string  `json:"card_id"`
	CardType   string  `json:"card_type"`
	CustomerID string  `json:"customer_id"`
	IssueDate  string  `json:"issue_date"`
	Balance    float64 `json:"balance"`
	Status     string  `json:"status"`
}

// Identifier returns whichever card identifier the CRM sent.
func (c IssuedCard) Identifier() string {
	if c.ID != "" {
		return c.ID
	}
	return c.CardID
}

// ProductResult is the response of POST /cards/{id}/products.
type ProductResult struct {
	Status string `json:"status"`
}

// CardTapRequest is the body of POST /simulate/cardTap.
type CardTapRequest struct {
	CardID      string `json:"card_id"`
	Location    string `json:"location"`
	DeviceID    string `json:"device_id"`
	TransitMode string `json:"transit_mode"`
	Direction   string `json:"direction"`
}

// IssueCard issues a new card to a customer.
func (c *Client) IssueCard(ctx context.Context, req IssueCardRequest) (*IssuedCard, error) {
	var card IssuedCard
	if err := c.Do(ctx, http.MethodPost, "/cards/issue", req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// AddProduct loads a product worth value onto a card.
func (c *Client) AddProduct(ctx context.Context, cardID, product string, value float64) (*ProductResult, error) {
	body := struct {
		Product string  `json:"product"`
		Value   float64 `json:"value"`
	}{Product: product, Value: value}

	var result ProductResult
	if err := c.Do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/products", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReloadCard adds stored value to a card.
func (c *Client) ReloadCard(ctx context.Context, cardID string, amount float64) (map[string]any, error) {
	body := struct {
		Amount float64 `json:"amount"`
	}{Amount: amount}

	var result map[string]any
	if err := c.Do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/reload", body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetCardBalance returns a card's balance.
func (c *Client) GetCardBalance(ctx context.Context, cardID string) (*domain.Balance, error) {
	var balance domain.Balance
	if err := c.Do(ctx, http.MethodGet, "/cards/"+url.PathEscape(cardID)+"/balance", nil, &balance); err != nil {
		return nil, err
	}
	if balance.CardID == "" {
		balance.CardID = cardID
	}
	return &balance, nil
}

// GetCardTransactions returns a card's transaction history.
func (c *Client) GetCardTransactions(ctx context.Context, cardID string) ([]domain.CardTransaction, error) {
	var txns []domain.CardTransaction
	if err := c.Do(ctx, http.MethodGet, "/cards/"+url.PathEscape(cardID)+"/transactions", nil, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// ListCards returns every card known to the CRM.
func (c *Client) ListCards(ctx context.Context) ([]domain.Card, error) {
	var cards []domain.Card
	if err := c.Do(ctx, http.MethodGet, "/cards/", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// RandomCard picks a random card from the CRM, standing in for a reader
// when no physical card is presented.
func (c *Client) RandomCard(ctx context.Context) (*domain.Card, error) {
	cards, err := c.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrNoCards
	}

	card := cards[rand.Intn(len(cards))]
	card.CardNumber = card.ID
	return &card, nil
}

// SimulateCardTap records a card tap at a reader.
func (c *Client) SimulateCardTap(ctx context.Context, req CardTapRequest) (map[string]any, error) {
	var result map[string]any
	if err := c.Do(ctx, http.MethodPost, "/simulate/cardTap", req, &result); err != nil {
		return nil, err
	}
	return result, nil
}
