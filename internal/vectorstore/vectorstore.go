package vectorstore

import (
	"context"
	"errors"

	"rag-prep/internal/embeddings"
)

// ErrIndexNotFound is returned when an operation targets an index that was
// never created.
var ErrIndexNotFound = errors.New("index not found")

// Record is one embedded chunk ready for upsert.
type Record struct {
	ID       string
	Values   embeddings.Vector
	Metadata map[string]string
}

// Index is the contract to the hosted vector index.
type Index interface {
	// EnsureIndex provisions the index if it does not exist yet. Calling it
	// again with the same name is a no-op.
	EnsureIndex(ctx context.Context, name string, dimension int) error

	// Upsert writes records by id, replacing existing ones.
	Upsert(ctx context.Context, records []Record) error

	// Fetch returns the stored records for the given ids. Missing ids are
	// simply absent from the result.
	Fetch(ctx context.Context, ids []string) (map[string]Record, error)

	// Close releases any resources held by the client.
	Close(ctx context.Context) error
}
