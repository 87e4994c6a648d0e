package bytestore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("abc")
	i0, err := s.Put(ctx, Blob{Name: "a.txt", Bytes: data})
	require.NoError(t, err)
	i1, err := s.Put(ctx, Blob{Name: "b.png", Bytes: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)

	data[0] = 'z'
	got, err := s.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, Blob{Name: "a.txt", Bytes: []byte("abc")}, got)

	_, err = s.Get(ctx, 2)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.Get(ctx, -1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

type fakeRepo struct {
	mu   sync.Mutex
	rows map[int]Blob
	err  error
}

func (f *fakeRepo) Insert(_ context.Context, idx int, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows[idx] = Blob{Name: name, Bytes: data}
	return nil
}

func (f *fakeRepo) Get(_ context.Context, idx int) (string, []byte, error) {
	b, ok := f.rows[idx]
	if !ok {
		return "", nil, common.ErrNotFound
	}
	return b.Name, b.Bytes, nil
}

func (f *fakeRepo) Count(context.Context) (int, error) {
	return len(f.rows), f.err
}

func TestRepoStore_ContinuesNumbering(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{rows: map[int]Blob{0: {Name: "old"}, 1: {Name: "older"}}}

	s, err := NewRepoStore(ctx, repo)
	require.NoError(t, err)

	idx, err := s.Put(ctx, Blob{Name: "new", Bytes: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	got, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)

	_, err = s.Get(ctx, 5)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRepoStore_InsertErrorDoesNotAdvance(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{rows: map[int]Blob{}}
	s, err := NewRepoStore(ctx, repo)
	require.NoError(t, err)

	repo.err = errors.New("boom")
	_, err = s.Put(ctx, Blob{Name: "a"})
	require.Error(t, err)

	repo.err = nil
	idx, err := s.Put(ctx, Blob{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestNewRepoStore_CountError(t *testing.T) {
	_, err := NewRepoStore(context.Background(), &fakeRepo{rows: map[int]Blob{}, err: errors.New("down")})
	require.Error(t, err)
}
