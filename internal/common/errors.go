// Package common defines shared constants and sentinel errors used across
// client and server layers of Matthias. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Account file errors.
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrCorrupt         = errors.New("corrupt account file")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidUsername = errors.New("username must not contain spaces or '@'")

	// Crypto material errors. Always fatal to the operation.
	ErrDecrypt         = errors.New("decryption failed")
	ErrMalformedSecret = errors.New("malformed session secret")

	// Handshake errors.
	ErrAuth            = errors.New("invalid password")
	ErrProtocolVersion = errors.New("outdated client or connection")
	ErrNotConnected    = errors.New("not connected")

	// Ledger errors.
	ErrIndexOutOfRange  = errors.New("message index out of range")
	ErrWrongPayloadKind = errors.New("only text messages can be edited")
	ErrNotOwner         = errors.New("message belongs to another sender")

	// Service-level errors.
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnavailable   = errors.New("server unavailable")
	ErrInternal      = errors.New("internal error")
	ErrInvalidFormat = errors.New("invalid message format")

	// Network discovery errors.
	ErrConnectionRefused = errors.New("connection refused")
)
