package domain

// Card is a transit card as reported by the CRM.
type Card struct {
	ID         string  `json:"id"`
	CardNumber string  `json:"card_number,omitempty"`
	Balance    float64 `json:"balance"`
	Status     string  `json:"status,omitempty"`
	Type       string  `json:"type,omitempty"`
	CustomerID string  `json:"customer_id,omitempty"`
	IssueDate  string  `json:"issue_date,omitempty"`
}

// Customer is a CRM customer.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CardTransaction is one entry of a card's CRM transaction history.
type CardTransaction struct {
	ID        string  `json:"id"`
	CardID    string  `json:"card_id"`
	Amount    float64 `json:"amount"`
	Type      string  `json:"type,omitempty"`
	Product   string  `json:"product,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// Balance is a card balance lookup result.
type Balance struct {
	CardID  string  `json:"card_id"`
	Balance float64 `json:"balance"`
}

// Session is the operator's authenticated CRM session.
type Session struct {
	Token    string
	UserName string
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
