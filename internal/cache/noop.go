package cache

import (
	"context"
	"time"

	"rag-prep/internal/embeddings"
)

// NoOpCache is a cache implementation that does nothing. Used when no Redis
// is configured - all operations succeed but every lookup is a miss.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetVector always returns nil (cache miss)
func (c *NoOpCache) GetVector(ctx context.Context, key string) (embeddings.Vector, error) {
	return nil, nil
}

// SetVector does nothing and always succeeds
func (c *NoOpCache) SetVector(ctx context.Context, key string, vec embeddings.Vector, ttl time.Duration) error {
	return nil
}

// Close does nothing and always succeeds
func (c *NoOpCache) Close() error {
	return nil
}
