package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos/internal/crm"
	"pos/internal/domain"
	"pos/internal/redis"
)

var testTerminal = Terminal{DeviceID: "POS-007", Location: "Central Station"}

func newCacheStore(t *testing.T) (*miniredis.Miniredis, *redis.CacheStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, redis.NewCacheStore(client)
}

func TestCardService_IssueCardUsesToday(t *testing.T) {
	backend := &mockCRM{issued: &crm.IssuedCard{ID: "card-9"}}
	svc := NewCardService(backend, nil, testTerminal)
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC) }

	card, err := svc.IssueCard(context.Background(), IssueCardForm{
		MediaType:  "CSC",
		CardNumber: "4111000000000001",
		CustomerID: "C001",
	})
	require.NoError(t, err)
	assert.Equal(t, "card-9", card.Identifier())
	assert.Equal(t, crm.IssueCardRequest{
		CardID:     "4111000000000001",
		CardType:   "CSC",
		CustomerID: "C001",
		IssueDate:  "2024-03-09",
	}, backend.lastIssue)
}

func TestCardService_IssueCardValidation(t *testing.T) {
	svc := NewCardService(&mockCRM{}, nil, testTerminal)

	_, err := svc.IssueCard(context.Background(), IssueCardForm{MediaType: "CSC", CustomerID: "C001"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "card_number", verr.Field)
}

func TestCardService_IssueWithoutIdentifierFails(t *testing.T) {
	svc := NewCardService(&mockCRM{issued: &crm.IssuedCard{Status: "pending"}}, nil, testTerminal)

	_, err := svc.IssueCard(context.Background(), IssueCardForm{MediaType: "CSC", CardNumber: "1", CustomerID: "C001"})
	assert.ErrorIs(t, err, ErrCardRejected)
}

func TestCardService_IssueRemoteFailureKeepsDetail(t *testing.T) {
	backend := &mockCRM{issueErr: &crm.APIError{StatusCode: 409, Detail: "Card already exists"}}
	svc := NewCardService(backend, nil, testTerminal)

	_, err := svc.IssueCard(context.Background(), IssueCardForm{MediaType: "CSC", CardNumber: "1", CustomerID: "C001"})
	require.Error(t, err)
	assert.Equal(t, "Card already exists", crm.DetailOf(err))
}

func TestCardService_RegisterCard(t *testing.T) {
	tests := []struct {
		name      string
		form      RegisterCardForm
		wantField string
	}{
		{"missing card id", RegisterCardForm{CardType: "Bank Card", IssueDate: "2024-01-01", CustomerID: "C1"}, "card_id"},
		{"missing type", RegisterCardForm{CardID: "x", IssueDate: "2024-01-01", CustomerID: "C1"}, "card_type"},
		{"missing date", RegisterCardForm{CardID: "x", CardType: "Bank Card", CustomerID: "C1"}, "issue_date"},
		{"bad date", RegisterCardForm{CardID: "x", CardType: "Bank Card", IssueDate: "01/01/2024", CustomerID: "C1"}, "issue_date"},
		{"missing customer", RegisterCardForm{CardID: "x", CardType: "Bank Card", IssueDate: "2024-01-01"}, "customer_id"},
		{"short card id is fine", RegisterCardForm{CardID: "x", CardType: "Bank Card", IssueDate: "2024-01-01", CustomerID: "C1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockCRM{issued: &crm.IssuedCard{CardID: "x"}}
			svc := NewCardService(backend, nil, testTerminal)

			_, err := svc.RegisterCard(context.Background(), tt.form)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "2024-01-01", backend.lastIssue.IssueDate)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestCardService_ReloadRejectsNonPositive(t *testing.T) {
	backend := &mockCRM{}
	svc := NewCardService(backend, nil, testTerminal)

	_, err := svc.Reload(context.Background(), "c1", 0)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	_, err = svc.Reload(context.Background(), "c1", 20)
	require.NoError(t, err)
	assert.Equal(t, 20.0, backend.reloadedBy)
}

func TestCardService_TapUsesTerminal(t *testing.T) {
	backend := &mockCRM{}
	svc := NewCardService(backend, nil, testTerminal)

	_, err := svc.Tap(context.Background(), "c1", TapRequest{Direction: "exit"})
	require.NoError(t, err)
	assert.Equal(t, crm.CardTapRequest{
		CardID:      "c1",
		Location:    "Central Station",
		DeviceID:    "POS-007",
		TransitMode: domain.TransitModeCard,
		Direction:   "exit",
	}, backend.lastTap)
}

func TestCardService_CustomersAreCached(t *testing.T) {
	_, cache := newCacheStore(t)
	backend := &mockCRM{customers: []domain.Customer{{ID: "C9", Name: "Kim"}}}
	svc := NewCardService(backend, cache, testTerminal)

	for i := 0; i < 3; i++ {
		customers, err := svc.Customers(context.Background())
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "Kim", customers[0].Name)
	}
	assert.Equal(t, 1, backend.custCalls)
}

func TestCardService_CacheOutageFallsThrough(t *testing.T) {
	mr, cache := newCacheStore(t)
	mr.Close()

	backend := &mockCRM{customers: []domain.Customer{{ID: "C9", Name: "Kim"}}}
	svc := NewCardService(backend, cache, testTerminal)

	customers, err := svc.Customers(context.Background())
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestCardService_FormOptionsFallback(t *testing.T) {
	svc := NewCardService(&mockCRM{custErr: errBoom}, nil, testTerminal)

	opts := svc.FormOptions(context.Background())
	assert.True(t, opts.Fallback)
	assert.Equal(t, []domain.Customer{{ID: "C001", Name: "John Doe"}, {ID: "C002", Name: "Jane Smith"}}, opts.Customers)
	assert.Equal(t, []string{"Account Based Card", "Bank Card", "Closed Loop Card"}, opts.CardTypes)
}

func TestCardService_FormOptionsLive(t *testing.T) {
	svc := NewCardService(&mockCRM{customers: []domain.Customer{{ID: "C5"}}}, nil, testTerminal)

	opts := svc.FormOptions(context.Background())
	assert.False(t, opts.Fallback)
	assert.Equal(t, "C5", opts.Customers[0].ID)
	assert.NotEmpty(t, opts.MediaTypes)
}
