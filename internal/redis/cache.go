package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"pos/internal/domain"
)

// CacheStore caches CRM lookups used to fill form options.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// CustomersCacheTTL bounds how stale the customer dropdown can get.
const CustomersCacheTTL = 60 * time.Second

const customersCacheKey = "cache:customers"

// GetCustomers returns the cached customer list, or nil on a cache miss.
func (s *CacheStore) GetCustomers(ctx context.Context) ([]domain.Customer, error) {
	data, err := s.client.Get(ctx, customersCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var customers []domain.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// SetCustomers stores the customer list.
func (s *CacheStore) SetCustomers(ctx context.Context, customers []domain.Customer) error {
	data, err := json.Marshal(customers)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, customersCacheKey, data, CustomersCacheTTL).Err()
}

// InvalidateCustomers drops the cached customer list.
func (s *CacheStore) InvalidateCustomers(ctx context.Context) error {
	return s.client.Del(ctx, customersCacheKey).Err()
}
