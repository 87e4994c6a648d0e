// Package connection implements the client side of the Connect handshake
// and the typed send helpers used once a session is established.
package connection

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/matthias/internal/client/client"
	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/logging"
	"github.com/dmitrijs2005/matthias/internal/protocol"
)

// State is where a Connection is in its lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Error
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Notifier receives connection failures that Connect absorbs instead of
// returning.
type Notifier func(err error)

// Dialer opens an RPC handle for an address. Opening must not send bytes.
type Dialer func(address string) (client.Client, error)

// Identity is what every envelope sent on a connection is stamped with.
type Identity struct {
	Author   string
	SenderID string
	Password string
	// LastSeen is announced with the handshake when set.
	LastSeen *int
}

// Connection is a live or disabled link to one server.
//
// The session secret is captured once at connect time and never changes.
// Copies made with Duplicate share the RPC handle and the secret but keep
// their own state.
type Connection struct {
	address string
	id      Identity
	rpc     *handle
	secret  []byte

	mu    sync.RWMutex
	state State
}

// handle is the RPC client shared by a Connection and its duplicates.
// Once closed it hands out nothing.
type handle struct {
	mu     sync.RWMutex
	client client.Client
	closed bool
}

func newHandle(c client.Client) *handle {
	return &handle{client: c}
}

// live returns the client, or nil when h is nil or closed.
func (h *handle) live() client.Client {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}
	return h.client
}

func (h *handle) close() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.client.Close()
}

// Connector builds connections with a shared dialer and notifier.
type Connector struct {
	dial   Dialer
	notify Notifier
	logger logging.Logger
}

// NewConnector returns a Connector. A nil notify logs failures at error level.
func NewConnector(dial Dialer, notify Notifier, l logging.Logger) *Connector {
	if l == nil {
		l = logging.Nop{}
	}
	l = l.With("module", "connection")
	if notify == nil {
		notify = func(err error) { l.Error(context.Background(), "Connection failed", "error", err) }
	}
	return &Connector{dial: dial, notify: notify, logger: l}
}

// Connect performs the handshake with the server at address.
//
// A wrong password yields common.ErrAuth and an incompatible client yields
// common.ErrProtocolVersion; a reply that is not hex, or decodes to no
// bytes, yields common.ErrMalformedSecret. In those cases no Connection is returned.
//
// Transport failures are different: they go to the notifier and Connect
// returns a Connection in the Error state with an empty secret and a nil
// error, so the caller can retry.
func (c *Connector) Connect(ctx context.Context, address string, id Identity) (*Connection, error) {
	conn := &Connection{address: address, id: id, state: Connecting}

	rpc, err := c.dial(address)
	if err != nil {
		return c.disabled(ctx, conn, fmt.Errorf("dial %s: %w", address, err)), nil
	}
	h := newHandle(rpc)

	req, err := protocol.EncodeEnvelope(protocol.NewConnect(id.Author, id.SenderID, id.Password, id.LastSeen))
	if err != nil {
		_ = h.close()
		return nil, err
	}

	reply, err := rpc.Exchange(ctx, req)
	if err != nil {
		_ = h.close()
		return c.disabled(ctx, conn, fmt.Errorf("connect %s: %w", address, err)), nil
	}

	switch reply {
	case common.ReplyInvalidPassword:
		_ = h.close()
		return nil, common.ErrAuth
	case common.ReplyInvalidClient:
		_ = h.close()
		return nil, common.ErrProtocolVersion
	}

	secret, err := hex.DecodeString(reply)
	if err != nil {
		_ = h.close()
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedSecret, err)
	}
	if len(secret) == 0 {
		_ = h.close()
		return nil, fmt.Errorf("%w: empty secret", common.ErrMalformedSecret)
	}

	conn.rpc = h
	conn.secret = secret
	conn.setState(Connected)
	c.logger.Info(ctx, "Connected", "address", address)
	return conn, nil
}

func (c *Connector) disabled(ctx context.Context, conn *Connection, err error) *Connection {
	c.logger.Warn(ctx, "Connection disabled", "address", conn.address, "error", err)
	c.notify(err)
	conn.secret = nil
	conn.setState(Error)
	return conn
}

// Disconnect deregisters from the server. It fails with
// common.ErrNotConnected when there is no open RPC handle, including after
// Close on this connection or any duplicate. The reply text is ignored.
func (c *Connection) Disconnect(ctx context.Context) error {
	if c == nil {
		return common.ErrNotConnected
	}
	rpc := c.rpc.live()
	if rpc == nil {
		c.markClosed()
		return common.ErrNotConnected
	}

	req, err := protocol.EncodeEnvelope(protocol.NewDisconnect(c.id.Author, c.id.SenderID, c.id.Password, nil))
	if err != nil {
		return err
	}
	_, err = rpc.Exchange(ctx, req)
	c.setState(Disconnected)
	return err
}

// Close releases the RPC handle shared with every duplicate. Later sends on
// any of them fail with common.ErrNotConnected.
func (c *Connection) Close() error {
	if c == nil || c.rpc == nil {
		return nil
	}
	c.setState(Disconnected)
	return c.rpc.close()
}

// Duplicate returns a Connection sharing this one's RPC handle and secret.
func (c *Connection) Duplicate() *Connection {
	return &Connection{
		address: c.address,
		id:      c.id,
		rpc:     c.rpc,
		secret:  c.secret,
		state:   c.State(),
	}
}

func (c *Connection) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// markClosed moves a connection whose shared handle was closed elsewhere
// to Disconnected. Disabled connections keep their Error state.
func (c *Connection) markClosed() {
	if c.rpc != nil {
		c.setState(Disconnected)
	}
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Secret returns a copy of the session secret. It is empty unless the
// handshake succeeded.
func (c *Connection) Secret() []byte {
	return append([]byte(nil), c.secret...)
}

func (c *Connection) Address() string {
	return c.address
}

func (c *Connection) Identity() Identity {
	return c.id
}

// exchange sends env and returns the raw reply. Transport failures move
// the connection to the Error state.
func (c *Connection) exchange(ctx context.Context, env protocol.Envelope) (string, error) {
	rpc := c.rpc.live()
	if rpc == nil {
		c.markClosed()
		return "", fmt.Errorf("%s: %w", c.State(), common.ErrNotConnected)
	}
	if st := c.State(); st != Connected {
		return "", fmt.Errorf("%s: %w", st, common.ErrNotConnected)
	}

	req, err := protocol.EncodeEnvelope(env)
	if err != nil {
		return "", err
	}

	reply, err := rpc.Exchange(ctx, req)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			c.setState(Error)
		}
		return "", err
	}
	return reply, nil
}
