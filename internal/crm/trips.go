package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pos/internal/domain"
)

// CreateTrip submits a trip record.
func (c *Client) CreateTrip(ctx context.Context, trip domain.TripRecord) error {
	return c.Do(ctx, http.MethodPost, "/trips/", trip, nil)
}

// RandomOperator asks the CRM to pick an operator for a sale. The CRM answers
// with a bare JSON string; older deployments wrap it in an object.
func (c *Client) RandomOperator(ctx context.Context) (string, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/operators/random", nil, &raw); err != nil {
		return "", err
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}

	var wrapped struct {
		Operator string `json:"operator"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return "", fmt.Errorf("crm: decode operator: %w", err)
	}
	if wrapped.Operator != "" {
		return wrapped.Operator, nil
	}
	return wrapped.Name, nil
}
