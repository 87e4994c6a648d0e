package client

import "context"

// Client is the single multiplexed call every envelope kind goes through:
// one request text in, one reply text out.
type Client interface {
	Exchange(ctx context.Context, request string) (string, error)
	Close() error
}
