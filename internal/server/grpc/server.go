package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/matthias/internal/logging"
	"github.com/dmitrijs2005/matthias/internal/rpc"
	"google.golang.org/grpc"
)

// MessageHandler turns one request text into one reply text.
type MessageHandler interface {
	Handle(ctx context.Context, request string) (string, error)
}

type GRPCServer struct {
	rpc.UnimplementedMessageServer
	address         string
	messages        MessageHandler
	logger          logging.Logger
	shutdownTimeout time.Duration
}

func NewGRPCServer(a string, l logging.Logger, h MessageHandler, shutdownTimeout time.Duration) (*GRPCServer, error) {
	return &GRPCServer{
		address:         a,
		logger:          l.With("module", "grpc_server"),
		messages:        h,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// NewServer builds the gRPC server with interceptors and the Message service
// registered, without binding a listener.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.loggingInterceptor))
	rpc.RegisterMessageServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.address, err)
	}
	return s.Serve(ctx, lis)
}

// Serve answers Message calls on lis. After ctx is cancelled it drains
// in-flight calls and returns once the server has fully stopped.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server")
		s.stop(srv)
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	<-stopped
	return nil
}

// stop drains in-flight calls, cutting them off after shutdownTimeout.
func (s *GRPCServer) stop(srv *grpc.Server) {
	if s.shutdownTimeout <= 0 {
		srv.GracefulStop()
		return
	}

	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.shutdownTimeout):
		srv.Stop()
	}
}
