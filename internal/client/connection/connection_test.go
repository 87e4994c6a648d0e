package connection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/matthias/internal/client/client"
	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	sent    []protocol.Envelope
	closed  bool
}

func (f *fakeClient) Exchange(_ context.Context, req string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	env, err := protocol.DecodeEnvelope(req)
	if err != nil {
		return "", err
	}
	f.sent = append(f.sent, env)

	var reply string
	var rerr error
	if len(f.replies) > 0 {
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	if len(f.errs) > 0 {
		rerr, f.errs = f.errs[0], f.errs[1:]
	}
	return reply, rerr
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func dialer(f *fakeClient) Dialer {
	return func(string) (client.Client, error) { return f, nil }
}

type recorder struct {
	errs []error
}

func (r *recorder) notify(err error) { r.errs = append(r.errs, err) }

var alice = Identity{Author: "alice", SenderID: "sid-a", Password: "pw"}

func TestConnect_Success(t *testing.T) {
	f := &fakeClient{replies: []string{"00ff10"}}
	c := NewConnector(dialer(f), nil, nil)

	conn, err := c.Connect(context.Background(), "host:1", alice)
	require.NoError(t, err)
	assert.Equal(t, Connected, conn.State())
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, conn.Secret())
	assert.Equal(t, "host:1", conn.Address())

	require.Len(t, f.sent, 1)
	s, ok := f.sent[0].Payload.(protocol.Sync)
	require.True(t, ok)
	assert.Equal(t, protocol.Connect, s.Mode)
	assert.Equal(t, "pw", s.Password)
	assert.Equal(t, "alice", f.sent[0].Author)
}

func TestConnect_InvalidPassword(t *testing.T) {
	f := &fakeClient{replies: []string{common.ReplyInvalidPassword}}
	conn, err := NewConnector(dialer(f), nil, nil).Connect(context.Background(), "h", alice)

	assert.ErrorIs(t, err, common.ErrAuth)
	assert.Nil(t, conn)
	assert.True(t, f.closed)
}

func TestConnect_InvalidClient(t *testing.T) {
	f := &fakeClient{replies: []string{common.ReplyInvalidClient}}
	_, err := NewConnector(dialer(f), nil, nil).Connect(context.Background(), "h", alice)
	assert.ErrorIs(t, err, common.ErrProtocolVersion)
}

func TestConnect_MalformedSecret(t *testing.T) {
	f := &fakeClient{replies: []string{"not-hex!"}}
	_, err := NewConnector(dialer(f), nil, nil).Connect(context.Background(), "h", alice)
	assert.ErrorIs(t, err, common.ErrMalformedSecret)
}

func TestConnect_TransportErrorReturnsDisabledConnection(t *testing.T) {
	f := &fakeClient{errs: []error{common.ErrUnavailable}}
	rec := &recorder{}

	conn, err := NewConnector(dialer(f), rec.notify, nil).Connect(context.Background(), "h", alice)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, Error, conn.State())
	assert.Empty(t, conn.Secret())
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], common.ErrUnavailable)

	assert.ErrorIs(t, conn.Disconnect(context.Background()), common.ErrNotConnected)
	assert.ErrorIs(t, conn.Post(context.Background(), "hi", nil), common.ErrNotConnected)
}

func TestConnect_DialErrorReturnsDisabledConnection(t *testing.T) {
	rec := &recorder{}
	dial := func(string) (client.Client, error) { return nil, errors.New("bad address") }

	conn, err := NewConnector(dial, rec.notify, nil).Connect(context.Background(), "::", alice)
	require.NoError(t, err)
	assert.Equal(t, Error, conn.State())
	assert.Len(t, rec.errs, 1)
}

func TestDisconnect(t *testing.T) {
	f := &fakeClient{replies: []string{"aa", "some-secret-ignored"}}
	conn, err := NewConnector(dialer(f), nil, nil).Connect(context.Background(), "h", alice)
	require.NoError(t, err)

	require.NoError(t, conn.Disconnect(context.Background()))
	assert.Equal(t, Disconnected, conn.State())

	s := f.sent[1].Payload.(protocol.Sync)
	assert.Equal(t, protocol.Disconnect, s.Mode)
	assert.Equal(t, "pw", s.Password)
}

func TestDisconnect_NilConnection(t *testing.T) {
	var c *Connection
	assert.ErrorIs(t, c.Disconnect(context.Background()), common.ErrNotConnected)
}

func TestDuplicate_SharesSecretAndHandle(t *testing.T) {
	f := &fakeClient{replies: []string{"0102", common.ReplyOK}}
	conn, err := NewConnector(dialer(f), nil, nil).Connect(context.Background(), "h", alice)
	require.NoError(t, err)

	dup := conn.Duplicate()
	assert.Equal(t, conn.Secret(), dup.Secret())

	require.NoError(t, dup.Post(context.Background(), "from dup", nil))
	assert.Len(t, f.sent, 2)

	// Secret returns a copy
	s := dup.Secret()
	s[0] = 9
	assert.Equal(t, []byte{1, 2}, conn.Secret())
}

func TestConnect_EmptySecret(t *testing.T) {
	f := &fakeClient{replies: []string{""}}
	conn, err := NewConnector(dialer(f), nil, nil).Connect(context.Background(), "h", alice)
	require.ErrorIs(t, err, common.ErrMalformedSecret)
	assert.Nil(t, conn)
	assert.True(t, f.closed)
}

func TestConnect_AnnouncesLastSeen(t *testing.T) {
	f := &fakeClient{replies: []string{"aa"}}
	id := alice
	seen := 5
	id.LastSeen = &seen

	_, err := NewConnector(dialer(f), nil, nil).Connect(context.Background(), "h", id)
	require.NoError(t, err)

	s := f.sent[0].Payload.(protocol.Sync)
	require.NotNil(t, s.LastSeenIndex)
	assert.Equal(t, 5, *s.LastSeenIndex)
}

func TestClose_ThenDisconnect(t *testing.T) {
	f := &fakeClient{replies: []string{"aa"}}
	conn, err := NewConnector(dialer(f), nil, nil).Connect(context.Background(), "h", alice)
	require.NoError(t, err)
	dup := conn.Duplicate()

	require.NoError(t, conn.Close())
	assert.True(t, f.closed)
	assert.Equal(t, Disconnected, conn.State())

	assert.ErrorIs(t, conn.Disconnect(context.Background()), common.ErrNotConnected)
	assert.ErrorIs(t, dup.Disconnect(context.Background()), common.ErrNotConnected)
	assert.Equal(t, Disconnected, dup.State())

	err = dup.Post(context.Background(), "late", nil)
	require.ErrorIs(t, err, common.ErrNotConnected)
	assert.NotContains(t, err.Error(), "rpc error")

	assert.Len(t, f.sent, 1, "nothing is sent after close")
	require.NoError(t, dup.Close())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "state(9)", State(9).String())
}
