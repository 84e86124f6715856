package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyPrefix = "pos:idempotency:"
	// IdempotencyTTL is how long a replayable response is kept.
	IdempotencyTTL = 10 * time.Minute
)

// replay is a stored response for a repeated POS action.
type replay struct {
	StatusCode  int             `json:"status_code"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// bodyRecorder tees the response body so it can be stored.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a POST carrying the same
// Idempotency-Key reaches the same route again, so a double-tapped "Print"
// or "Issue card" button acts once. Redis errors disable replay rather than
// failing the request.
func Idempotency(client *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = IdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if c.Request.Method != http.MethodPost || key == "" || client == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := idempotencyPrefix + c.Request.URL.Path + ":" + key

		stored, err := loadReplay(ctx, client, storeKey)
		switch {
		case err == nil:
			c.Header("Idempotent-Replay", "true")
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		case !errors.Is(err, redis.Nil):
			log.Printf("idempotency lookup failed, serving request: %v", err)
			c.Next()
			return
		}

		w := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		// Auth failures and server errors are worth retrying.
		if status < 200 || status >= 500 || status == http.StatusUnauthorized {
			return
		}

		if err := saveReplay(ctx, client, storeKey, replay{
			StatusCode:  status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}, ttl); err != nil {
			log.Printf("idempotency store failed: %v", err)
		}
	}
}

func loadReplay(ctx context.Context, client *redis.Client, key string) (*replay, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var r replay
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func saveReplay(ctx context.Context, client *redis.Client, key string, r replay, ttl time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return client.Set(context.WithoutCancel(ctx), key, data, ttl).Err()
}
