package blobs

import "context"

type Repository interface {
	Insert(ctx context.Context, index int, name string, data []byte) error
	Get(ctx context.Context, index int) (name string, data []byte, err error)
	Count(ctx context.Context) (int, error)
}
