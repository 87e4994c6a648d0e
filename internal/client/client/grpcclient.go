package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      rpc.MessageClient
}

// NewGRPCClient prepares a client for endpointURL. No bytes are sent until
// the first Exchange. A positive timeout bounds every call.
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewMessageClient(conn)
	return nil
}

// Exchange sends one request text through MessageMain and returns the reply.
// It is safe for concurrent use.
func (s *GRPCClient) Exchange(ctx context.Context, request string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.MessageMain(ctx, wrapperspb.String(request))
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Target returns the address the client was created for.
func (s *GRPCClient) Target() string {
	return s.endpointURL
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return common.ErrNotOwner
	case codes.OutOfRange:
		return common.ErrIndexOutOfRange
	case codes.FailedPrecondition:
		return common.ErrWrongPayloadKind
	case codes.NotFound:
		return common.ErrNotFound
	case codes.InvalidArgument:
		return common.ErrInvalidFormat
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return ErrUnavailable
	case codes.Internal:
		return fmt.Errorf("%w: %s", common.ErrInternal, st.Message())
	default:
		return err
	}
}
