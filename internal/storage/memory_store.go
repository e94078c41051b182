package storage

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore is an in-process BlobStoreInterface. Blobs are copied on the
// way in and out.
type MemoryStore struct {
	mu     sync.RWMutex
	data   []byte
	writes int
}

func (m *MemoryStore) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return bytes.Clone(m.data), nil
}

func (m *MemoryStore) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = bytes.Clone(data)
	if m.data == nil {
		m.data = []byte{}
	}
	m.writes++
	return nil
}

// Writes reports how many times Write succeeded.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func NewMemoryStore(initial []byte) *MemoryStore {
	return &MemoryStore{data: bytes.Clone(initial)}
}
