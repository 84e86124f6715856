package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos/internal/domain"
)

type fakeSession struct {
	mu      sync.Mutex
	session domain.Session
	cleared int
}

func (f *fakeSession) Load(ctx context.Context) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeSession) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = domain.Session{}
	f.cleared++
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, session SessionStore) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", APIKey: "test-key"}, session)
}

func TestDo_AttachesHeaders(t *testing.T) {
	session := &fakeSession{session: domain.Session{Token: "tok-1", UserName: "ana"}}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/cards/", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"c1","balance":4.5}]`))
	}, session)

	cards, err := client.ListCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "c1", cards[0].ID)
}

func TestDo_NoTokenNoAuthorization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}, &fakeSession{})

	_, err := client.ListCustomers(context.Background())
	require.NoError(t, err)
}

func TestDo_UnauthorizedClearsSession(t *testing.T) {
	session := &fakeSession{session: domain.Session{Token: "expired", UserName: "ana"}}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token expired"}`))
	}, session)

	_, err := client.GetCardBalance(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Token expired", DetailOf(err))
	assert.Equal(t, 1, session.cleared)
	assert.False(t, session.session.Authenticated())
}

func TestDo_ErrorDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Card already exists"}`))
	}, nil)

	_, err := client.IssueCard(context.Background(), IssueCardRequest{CardID: "c1"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Card already exists", apiErr.Detail)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestDo_ValidationDetailList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"field required"},{"msg":"bad date"}]}`))
	}, nil)

	_, err := client.IssueCard(context.Background(), IssueCardRequest{})
	assert.Equal(t, "field required; bad date", DetailOf(err))
}

func TestDo_NetworkFailure(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	err := client.CreateTrip(context.Background(), domain.TripRecord{ID: "RID100"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, DetailOf(err))
}

func TestAddProduct_Body(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cards/4111000000000001/products", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "7-Day Pass", body["product"])
		assert.Equal(t, 25.0, body["value"])

		_, _ = w.Write([]byte(`{"status":"loaded"}`))
	}, nil)

	res, err := client.AddProduct(context.Background(), "4111000000000001", "7-Day Pass", 25)
	require.NoError(t, err)
	assert.Equal(t, "loaded", res.Status)
}

func TestCreateTrip_Body(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trips/", r.URL.Path)
		var rec domain.TripRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "RID555", rec.ID)
		assert.Equal(t, domain.TransitModeCard, rec.TransitMode)
		w.WriteHeader(http.StatusCreated)
	}, nil)

	err := client.CreateTrip(context.Background(), domain.TripRecord{ID: "RID555", TransitMode: domain.TransitModeCard})
	require.NoError(t, err)
}

func TestRandomOperator_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare string", `"Metro Line 4"`, "Metro Line 4"},
		{"operator field", `{"operator":"Harbour Ferries"}`, "Harbour Ferries"},
		{"name field", `{"name":"City Buses"}`, "City Buses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/operators/random", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			got, err := client.RandomOperator(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRandomCard(t *testing.T) {
	t.Run("picks from list", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id":"c9","balance":1}]`))
		}, nil)

		card, err := client.RandomCard(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "c9", card.ID)
		assert.Equal(t, "c9", card.CardNumber)
	})

	t.Run("empty list", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}, nil)

		_, err := client.RandomCard(context.Background())
		assert.ErrorIs(t, err, ErrNoCards)
	})
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"access_token":"abc","user_name":"Ana"}`))
	}, nil)

	res, err := client.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc", res.AccessToken)
	assert.Equal(t, "Ana", res.UserName)
}

func TestIssuedCard_Identifier(t *testing.T) {
	assert.Equal(t, "a", IssuedCard{ID: "a", CardID: "b"}.Identifier())
	assert.Equal(t, "b", IssuedCard{CardID: "b"}.Identifier())
	assert.Empty(t, IssuedCard{}.Identifier())
}
