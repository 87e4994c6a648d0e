package grpc

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/matthias/internal/logging"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// recoveryInterceptor turns a handler panic into codes.Internal so one bad
// request cannot take the process down.
func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "Handler panic", "method", info.FullMethod, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			resp = nil
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	ctx = logging.ContextWith(ctx, "request_id", uuid.NewString())
	l := s.logger.With("method", info.FullMethod)

	resp, err := handler(ctx, req)

	switch code := status.Code(err); code {
	case codes.Internal, codes.Unknown, codes.InvalidArgument:
		l.Warn(ctx, "Handled", "code", code.String(), "duration", time.Since(start), "error", err)
	default:
		l.Debug(ctx, "Handled", "code", code.String(), "duration", time.Since(start))
	}
	return resp, err
}
