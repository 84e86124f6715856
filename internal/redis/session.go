package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"pos/internal/domain"
)

// Fixed keys the operator session is persisted under.
const (
	tokenKey    = "pos_token"
	userNameKey = "pos_userName"
)

// SessionStore persists the operator's CRM session in Redis.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Load returns the stored session. A missing session is not an error.
func (s *SessionStore) Load(ctx context.Context) (domain.Session, error) {
	values, err := s.client.MGet(ctx, tokenKey, userNameKey).Result()
	if err != nil {
		return domain.Session{}, err
	}

	var session domain.Session
	if v, ok := values[0].(string); ok {
		session.Token = v
	}
	if v, ok := values[1].(string); ok {
		session.UserName = v
	}
	return session, nil
}

// Save stores the session, replacing any previous one.
func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	return s.client.MSet(ctx, tokenKey, session.Token, userNameKey, session.UserName).Err()
}

// Clear removes the token and user name.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, tokenKey, userNameKey).Err()
}
