package vectorstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Index used in tests and offline runs.
type Memory struct {
	mu        sync.RWMutex
	name      string
	dimension int
	records   map[string]Record
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) EnsureIndex(_ context.Context, name string, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records != nil {
		return nil
	}
	m.name = name
	m.dimension = dimension
	m.records = make(map[string]Record)
	return nil
}

func (m *Memory) Upsert(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		return ErrIndexNotFound
	}
	for _, r := range records {
		if len(r.Values) != m.dimension {
			return fmt.Errorf("record %s has dimension %d, index expects %d", r.ID, len(r.Values), m.dimension)
		}
		m.records[r.ID] = r
	}
	return nil
}

func (m *Memory) Fetch(_ context.Context, ids []string) (map[string]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.records == nil {
		return nil, ErrIndexNotFound
	}
	out := make(map[string]Record, len(ids))
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

// Len reports the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *Memory) Close(context.Context) error {
	return nil
}
