// Package crm is the client for the remote CRM backend that owns cards,
// customers, trips and operator accounts.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"pos/internal/domain"
	"pos/internal/metrics"
)

const maxResponseBytes = 1 << 20

// SessionStore supplies the operator's bearer token and forgets it when the
// CRM rejects it.
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, error)
	Clear(ctx context.Context) error
}

// Config holds the client settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	Transport http.RoundTripper // nil uses http.DefaultTransport
}

// Client sends JSON requests to the CRM with the API key and the current
// session token attached.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	session    SessionStore
}

// NewClient creates a new CRM client.
func NewClient(cfg Config, session SessionStore) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
		session: session,
	}
}

// Do sends body as JSON and decodes a 2xx response into out. Either may be
// nil. A 401 clears the session and yields an error matching ErrUnauthorized;
// any other non-2xx status yields an *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("crm: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("crm: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	if c.session != nil {
		session, err := c.session.Load(ctx)
		if err != nil {
			log.Printf("crm: failed to load session: %v", err)
		} else if session.Authenticated() {
			req.Header.Set("Authorization", "Bearer "+session.Token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CRMRequests.WithLabelValues(method, metrics.StatusClass(0)).Inc()
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	metrics.CRMRequests.WithLabelValues(method, metrics.StatusClass(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("crm: read %s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.clearSession(ctx)
		return newAPIError(resp.StatusCode, data)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("crm: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) clearSession(ctx context.Context) {
	if c.session == nil {
		return
	}
	// The request context may already be done; clearing must still happen.
	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := c.session.Clear(clearCtx); err != nil {
		log.Printf("crm: failed to clear session after 401: %v", err)
		return
	}
	metrics.SessionsCleared.Inc()
}
