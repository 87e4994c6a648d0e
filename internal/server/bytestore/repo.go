package bytestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/server/repositories/blobs"
)

// RepoStore keeps blobs in a database table through blobs.Repository.
type RepoStore struct {
	mu   sync.Mutex
	repo blobs.Repository
	next int
}

// NewRepoStore continues numbering after the rows already in repo.
func NewRepoStore(ctx context.Context, repo blobs.Repository) (*RepoStore, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count blobs: %w", err)
	}
	return &RepoStore{repo: repo, next: n}, nil
}

func (s *RepoStore) Put(ctx context.Context, b Blob) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.next
	if err := s.repo.Insert(ctx, idx, b.Name, b.Bytes); err != nil {
		return 0, err
	}
	s.next++
	return idx, nil
}

func (s *RepoStore) Get(ctx context.Context, index int) (Blob, error) {
	if index < 0 {
		return Blob{}, fmt.Errorf("blob %d: %w", index, common.ErrNotFound)
	}
	name, data, err := s.repo.Get(ctx, index)
	if err != nil {
		return Blob{}, fmt.Errorf("blob %d: %w", index, err)
	}
	return Blob{Name: name, Bytes: data}, nil
}
