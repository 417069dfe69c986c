package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"rag-prep/internal/embeddings"
)

// Cache stores computed embedding vectors so re-running ingestion does not
// re-embed unchanged chunks.
type Cache interface {
	// GetVector retrieves a cached vector by key. Returns nil on a miss.
	GetVector(ctx context.Context, key string) (embeddings.Vector, error)

	// SetVector stores a vector with TTL.
	SetVector(ctx context.Context, key string, vec embeddings.Vector, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Key derives the cache key for a chunk: the embedding model and the exact
// chunk text together determine the vector.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
