package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"starsystem-server/internal/shared/errors"

	"github.com/google/uuid"
)

// Store persists documents. Load returns a not_found error for unknown ids.
type Store interface {
	Save(ctx context.Context, doc *Document) error
	Load(ctx context.Context, id uuid.UUID) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
	Backend() string
}

// MemoryStore keeps encoded documents in process memory. It is the default
// backend and what tests use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[uuid.UUID][]byte)}
}

func (m *MemoryStore) Save(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = data
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id uuid.UUID) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	data, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("snapshot %s not found", id)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &doc, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Backend() string {
	return "memory"
}
