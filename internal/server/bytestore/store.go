// Package bytestore keeps the raw bytes of uploaded files. Every Put takes
// the next index; indices are never reused and the store never shrinks.
package bytestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/matthias/internal/common"
)

// Blob is one stored upload.
type Blob struct {
	Name  string
	Bytes []byte
}

type Store interface {
	Put(ctx context.Context, b Blob) (int, error)
	Get(ctx context.Context, index int) (Blob, error)
}

type MemoryStore struct {
	mu    sync.RWMutex
	blobs []Blob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Put(_ context.Context, b Blob) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs = append(m.blobs, Blob{Name: b.Name, Bytes: append([]byte(nil), b.Bytes...)})
	return len(m.blobs) - 1, nil
}

func (m *MemoryStore) Get(_ context.Context, index int) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.blobs) {
		return Blob{}, fmt.Errorf("blob %d: %w", index, common.ErrNotFound)
	}
	b := m.blobs[index]
	return Blob{Name: b.Name, Bytes: append([]byte(nil), b.Bytes...)}, nil
}
