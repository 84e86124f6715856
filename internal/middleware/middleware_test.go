package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestIdempotency_ReplaysSecondRequest(t *testing.T) {
	var calls atomic.Int32
	router := gin.New()
	router.Use(Idempotency(newRedis(t), 0))
	router.POST("/v1/checkout/:id/print", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"call": n})
	})

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/checkout/tx-1/print", nil)
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send("k1")
	second := send("k1")
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.Equal(t, int32(1), calls.Load())

	send("k2")
	send("")
	assert.Equal(t, int32(3), calls.Load())
}

func TestIdempotency_DoesNotStoreUnauthorized(t *testing.T) {
	var calls atomic.Int32
	router := gin.New()
	router.Use(Idempotency(newRedis(t), 0))
	router.POST("/v1/cards/issue", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "expired"})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/cards/issue", nil)
		req.Header.Set("Idempotency-Key", "same")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_RedisDownServesRequest(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	router := gin.New()
	router.Use(Idempotency(client, 0))
	router.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Idempotency-Key", "k")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

type stubSessions struct {
	session domain.Session
	err     error
}

func (s stubSessions) Load(ctx context.Context) (domain.Session, error) {
	return s.session, s.err
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name     string
		sessions stubSessions
		want     int
	}{
		{"logged in", stubSessions{session: domain.Session{Token: "tok", UserName: "Ana"}}, http.StatusOK},
		{"logged out", stubSessions{}, http.StatusUnauthorized},
		{"store down", stubSessions{err: errors.New("dial tcp: refused")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequireSession(tt.sessions, "/login"))
			router.GET("/v1/cards", func(c *gin.Context) {
				c.String(http.StatusOK, SessionUser(c))
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/cards", nil))

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"not authenticated","redirect":"/login"}`, w.Body.String())
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware("http://pos.local"))
	router.POST("/v1/checkout", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/v1/checkout", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://pos.local", w.Header().Get("Access-Control-Allow-Origin"))
}
