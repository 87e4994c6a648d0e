package messages

import (
	"context"

	"github.com/dmitrijs2005/matthias/internal/protocol"
)

type Repository interface {
	Append(ctx context.Context, index int, out protocol.Output) error
	Update(ctx context.Context, index int, out protocol.Output) error
	LoadAll(ctx context.Context) ([]protocol.Output, error)
}
