package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireCardLock claims a card for one open transaction. Returns true if the
// lock was acquired, false if another transaction holds it.
func (s *LockStore) AcquireCardLock(ctx context.Context, cardID, owner string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:card:%s", cardID)

	ok, err := s.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// releaseScript deletes the lock only when owner still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript extends the lock only when owner still holds it.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RefreshCardLock resets the lock TTL. It returns false if owner no longer
// holds the lock.
func (s *LockStore) RefreshCardLock(ctx context.Context, cardID, owner string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:card:%s", cardID)

	n, err := refreshScript.Run(ctx, s.client, []string{key}, owner, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseCardLock releases the card lock if owner holds it.
func (s *LockStore) ReleaseCardLock(ctx context.Context, cardID, owner string) error {
	key := fmt.Sprintf("lock:card:%s", cardID)

	return releaseScript.Run(ctx, s.client, []string{key}, owner).Err()
}
