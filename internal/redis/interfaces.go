package redis

import (
	"context"
	"time"

	"pos/internal/domain"
)

// SessionStoreInterface defines the operator session persistence contract.
type SessionStoreInterface interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireCardLock(ctx context.Context, cardID, owner string, ttl time.Duration) (bool, error)
	RefreshCardLock(ctx context.Context, cardID, owner string, ttl time.Duration) (bool, error)
	ReleaseCardLock(ctx context.Context, cardID, owner string) error
}

// CacheStoreInterface defines the form-options cache contract.
type CacheStoreInterface interface {
	GetCustomers(ctx context.Context) ([]domain.Customer, error)
	SetCustomers(ctx context.Context, customers []domain.Customer) error
}

// Ensure concrete types implement interfaces.
var (
	_ SessionStoreInterface = (*SessionStore)(nil)
	_ LockStoreInterface    = (*LockStore)(nil)
	_ CacheStoreInterface   = (*CacheStore)(nil)
)
