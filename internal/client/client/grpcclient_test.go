package client

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

/*************
 * Fake rpc client
 *************/

type fakeRPC struct {
	lastReq *wrapperspb.StringValue
	resp    *wrapperspb.StringValue
	err     error
	block   bool
}

func (f *fakeRPC) MessageMain(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	f.lastReq = in
	if f.block {
		<-ctx.Done()
		return nil, status.Error(codes.DeadlineExceeded, ctx.Err().Error())
	}
	return f.resp, f.err
}

func newWithFake(f *fakeRPC, timeout time.Duration) *GRPCClient {
	return &GRPCClient{client: f, timeout: timeout}
}

func TestExchange_Success(t *testing.T) {
	f := &fakeRPC{resp: wrapperspb.String("Ok")}
	c := newWithFake(f, 0)

	got, err := c.Exchange(context.Background(), "req")
	require.NoError(t, err)
	require.Equal(t, "Ok", got)
	require.Equal(t, "req", f.lastReq.GetValue())
}

func TestExchange_Timeout(t *testing.T) {
	c := newWithFake(&fakeRPC{block: true}, 20*time.Millisecond)

	_, err := c.Exchange(context.Background(), "req")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	cases := []struct {
		in   error
		want error
	}{
		{status.Error(codes.Unauthenticated, "x"), common.ErrUnauthorized},
		{status.Error(codes.PermissionDenied, "x"), common.ErrNotOwner},
		{status.Error(codes.OutOfRange, "x"), common.ErrIndexOutOfRange},
		{status.Error(codes.FailedPrecondition, "x"), common.ErrWrongPayloadKind},
		{status.Error(codes.NotFound, "x"), common.ErrNotFound},
		{status.Error(codes.InvalidArgument, "x"), common.ErrInvalidFormat},
		{status.Error(codes.Unavailable, "x"), common.ErrUnavailable},
		{status.Error(codes.DeadlineExceeded, "x"), common.ErrUnavailable},
		{status.Error(codes.Canceled, "grpc: the client connection is closing"), common.ErrUnavailable},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, c.mapError(tc.in), tc.want)
	}

	require.NoError(t, c.mapError(nil))

	internal := c.mapError(status.Error(codes.Internal, "internal error"))
	assert.True(t, errors.Is(internal, common.ErrInternal))

	other := status.Error(codes.Aborted, "boom")
	err := c.mapError(other)
	require.Error(t, err)
	assert.True(t, errors.Is(err, other))
	assert.Equal(t, 1, strings.Count(err.Error(), "rpc error"))
}

type echo struct {
	rpc.UnimplementedMessageServer
}

func (echo) MessageMain(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("re:" + in.GetValue()), nil
}

func TestNewGRPCClient_LazyDialAndExchange(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	rpc.RegisterMessageServer(srv, echo{})
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	c, err := NewGRPCClient("passthrough:///bufnet", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "passthrough:///bufnet", c.Target())

	got, err := c.Exchange(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "re:hi", got)
}

func TestNewGRPCClient_UnreachableIsUnavailable(t *testing.T) {
	c, err := NewGRPCClient("127.0.0.1:1", 300*time.Millisecond)
	require.NoError(t, err, "construction must not dial")
	defer c.Close()

	_, err = c.Exchange(context.Background(), "hi")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClose_NilConn(t *testing.T) {
	require.NoError(t, (&GRPCClient{}).Close())
}

func TestExchange_AfterCloseIsUnavailable(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	rpc.RegisterMessageServer(srv, echo{})
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	c, err := NewGRPCClient("passthrough:///bufnet", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Exchange(context.Background(), "hi")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.NotContains(t, err.Error(), "rpc error: rpc error")
}
