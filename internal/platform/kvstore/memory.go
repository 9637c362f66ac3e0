package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type memKey struct {
	userID string
	key    string
}

// MemoryStore is a Store for tests and database-less development runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[memKey][]byte
	txMu sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[memKey][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, userID, key string, dst any) error {
	m.mu.RLock()
	raw, ok := m.data[memKey{userID, key}]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (m *MemoryStore) Save(_ context.Context, userID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.data[memKey{userID, key}] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID, key string) error {
	m.mu.Lock()
	delete(m.data, memKey{userID, key})
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}
