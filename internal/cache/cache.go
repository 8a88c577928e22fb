package cache

import (
	"context"
	"errors"
	"time"
)

// Cache stores serialised backend responses by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Nop is a Cache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (Nop) Set(context.Context, string, []byte) error {
	return nil
}

func (Nop) Delete(context.Context, string) error {
	return nil
}

// DefaultTTL is used when a RedisCache is created without a TTL.
const DefaultTTL = 5 * time.Minute
