package crm

import (
	"context"
	"net/http"
	"net/url"

	"pos/internal/domain"
)

// ListCustomers returns every CRM customer.
func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if err := c.Do(ctx, http.MethodGet, "/customers/", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// GetCustomer returns one customer.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := c.Do(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID), nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetReportsSummary returns the CRM's summary report as-is.
func (c *Client) GetReportsSummary(ctx context.Context) (map[string]any, error) {
	var summary map[string]any
	if err := c.Do(ctx, http.MethodGet, "/reports/summary", nil, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}
