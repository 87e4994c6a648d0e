// Package client is the client-side RPC facade.
//
// # Overview
//
// Every envelope kind (posts, uploads, file/image/audio requests,
// reactions, edits and sync) travels through the same MessageMain call as
// serialized text. GRPCClient wraps one *grpc.ClientConn; the connection is
// opened lazily on the first Exchange and may be shared by any number of
// goroutines.
//
// # Error Handling
//
// gRPC status codes are mapped back to the sentinels in package common so
// callers can match them with errors.Is: Unauthenticated becomes
// ErrUnauthorized, OutOfRange becomes ErrIndexOutOfRange, FailedPrecondition
// becomes ErrWrongPayloadKind, PermissionDenied becomes ErrNotOwner,
// Unavailable or DeadlineExceeded become ErrUnavailable and Internal becomes
// ErrInternal.
package client
