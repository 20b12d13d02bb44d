package policy

import (
	"context"
	"slices"
	"sync"
)

// Repository persists one JSON preferences document per user.
type Repository interface {
	// Load returns the stored document or ErrNotFound.
	Load(ctx context.Context, userID string) ([]byte, error)

	// Save stores the document, replacing any previous version.
	Save(ctx context.Context, userID string, data []byte) error
}

// MemoryRepository keeps documents in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string][]byte)}
}

func (r *MemoryRepository) Load(_ context.Context, userID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.docs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

func (r *MemoryRepository) Save(_ context.Context, userID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[userID] = slices.Clone(data)
	return nil
}
