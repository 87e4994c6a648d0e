package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/matthias/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestServer() *GRPCServer {
	return &GRPCServer{logger: logging.Nop{}}
}

func TestRecoveryInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/matthias.Message/MessageMain"}

	resp, err := s.recoveryInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestRecoveryInterceptor_RecoversPanic(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/matthias.Message/MessageMain"}

	resp, err := s.recoveryInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic(errors.New("contract violation"))
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingInterceptor_ReturnsHandlerResult(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/matthias.Message/MessageMain"}
	want := status.Error(codes.NotFound, "nope")

	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		assert.Equal(t, "req", req)
		return "resp", want
	})
	assert.Equal(t, "resp", resp)
	assert.Equal(t, want, err)
}

func TestLoggingInterceptor_AttachesRequestID(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/matthias.Message/MessageMain"}

	var attrs []any
	_, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		attrs = logging.FromContext(ctx)
		return "resp", nil
	})
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "request_id", attrs[0])
	assert.NotEmpty(t, attrs[1])
}
