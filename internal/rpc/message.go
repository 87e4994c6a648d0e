// Package rpc declares the single-method Message service. Every envelope
// kind travels through MessageMain as text inside a StringValue, so the
// service needs no generated message types.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName           = "matthias.Message"
	MessageMainFullMethod = "/" + ServiceName + "/MessageMain"
	messageMainMethodName = "MessageMain"
)

// MessageClient is the client API for the Message service.
type MessageClient interface {
	MessageMain(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type messageClient struct {
	cc grpc.ClientConnInterface
}

func NewMessageClient(cc grpc.ClientConnInterface) MessageClient {
	return &messageClient{cc}
}

func (c *messageClient) MessageMain(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MessageMainFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// MessageServer is the server API for the Message service.
type MessageServer interface {
	MessageMain(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// UnimplementedMessageServer can be embedded to have forward compatible implementations.
type UnimplementedMessageServer struct{}

func (UnimplementedMessageServer) MessageMain(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method MessageMain not implemented")
}

func RegisterMessageServer(s grpc.ServiceRegistrar, srv MessageServer) {
	s.RegisterService(&MessageServiceDesc, srv)
}

func messageMainHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MessageServer).MessageMain(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MessageMainFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MessageServer).MessageMain(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var MessageServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MessageServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: messageMainMethodName,
			Handler:    messageMainHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matthias.proto",
}
