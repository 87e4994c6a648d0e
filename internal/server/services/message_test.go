package services

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/logging"
	"github.com/dmitrijs2005/matthias/internal/protocol"
	"github.com/dmitrijs2005/matthias/internal/server/bytestore"
	"github.com/dmitrijs2005/matthias/internal/server/ledger"
	"github.com/dmitrijs2005/matthias/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, password string) *MessageService {
	t.Helper()
	return NewMessageService(
		ledger.New(nil, nil),
		bytestore.NewMemoryStore(),
		sessions.NewRegistry(16),
		password,
		logging.Nop{},
	)
}

func send(t *testing.T, s *MessageService, env protocol.Envelope) (string, error) {
	t.Helper()
	text, err := protocol.EncodeEnvelope(env)
	require.NoError(t, err)
	return s.Handle(context.Background(), text)
}

func connect(t *testing.T, s *MessageService, sender, password string) string {
	t.Helper()
	reply, err := send(t, s, protocol.NewConnect(sender, sender, password, nil))
	require.NoError(t, err)
	return reply
}

func syncAll(t *testing.T, s *MessageService, sender string) []protocol.Output {
	t.Helper()
	reply, err := send(t, s, protocol.NewSyncCounts(sender, sender, 0, nil))
	require.NoError(t, err)
	m, err := protocol.DecodeReply[protocol.Master](reply)
	require.NoError(t, err)
	return m.Outputs
}

func TestHandle_UndecodableIsInvalidClient(t *testing.T) {
	s := newService(t, "")
	reply, err := s.Handle(context.Background(), "garbage")
	require.NoError(t, err)
	assert.Equal(t, common.ReplyInvalidClient, reply)
}

func TestHandle_ConnectPassword(t *testing.T) {
	s := newService(t, "hunter2")

	assert.Equal(t, common.ReplyInvalidPassword, connect(t, s, "a", "wrong"))

	secret := connect(t, s, "a", "hunter2")
	raw, err := hex.DecodeString(secret)
	require.NoError(t, err)
	assert.Len(t, raw, 16)
}

func TestHandle_OpenServerAcceptsAnyPassword(t *testing.T) {
	s := newService(t, "")
	reply := connect(t, s, "a", "anything")
	_, err := hex.DecodeString(reply)
	assert.NoError(t, err)
}

func TestHandle_UnregisteredSenderIsUnauthorized(t *testing.T) {
	s := newService(t, "")
	_, err := send(t, s, protocol.NewPost("a", "a", "hi", nil))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestHandle_PostThenSync(t *testing.T) {
	s := newService(t, "")
	connect(t, s, "a", "")

	reply, err := send(t, s, protocol.NewPost("a", "a", "  hello  ", nil))
	require.NoError(t, err)
	assert.Equal(t, common.ReplyOK, reply)

	outs := syncAll(t, s, "a")
	require.Len(t, outs, 1)
	assert.Equal(t, protocol.NormalMessage{Text: "hello"}, outs[0].Payload)
	assert.Equal(t, "a", outs[0].SenderID)

	reply, err = send(t, s, protocol.NewSyncCounts("a", "a", 1, nil))
	require.NoError(t, err)
	m, err := protocol.DecodeReply[protocol.Master](reply)
	require.NoError(t, err)
	assert.Empty(t, m.Outputs)
}

func TestHandle_UploadsAndRequests(t *testing.T) {
	s := newService(t, "")
	connect(t, s, "a", "")

	_, err := send(t, s, protocol.NewUploadFromFile("a", "a", "doc.txt", []byte("text"), nil))
	require.NoError(t, err)
	_, err = send(t, s, protocol.NewUploadFromFile("a", "a", "cat.png", []byte("png"), nil))
	require.NoError(t, err)
	_, err = send(t, s, protocol.NewUploadFromFile("a", "a", "song.mp3", []byte("mp3"), nil))
	require.NoError(t, err)

	outs := syncAll(t, s, "a")
	require.Len(t, outs, 3)
	assert.Equal(t, protocol.UploadMessage{FileName: "doc.txt", Index: 0}, outs[0].Payload)
	assert.Equal(t, protocol.ImageMessage{Index: 1}, outs[1].Payload)
	assert.Equal(t, protocol.AudioMessage{FileName: "song.mp3", Index: 2}, outs[2].Payload)

	reply, err := send(t, s, protocol.NewFileRequest("a", "a", 0))
	require.NoError(t, err)
	fr, err := protocol.DecodeReply[protocol.FileReply](reply)
	require.NoError(t, err)
	assert.Equal(t, protocol.FileReply{Bytes: []byte("text"), FileName: "doc.txt"}, fr)

	reply, err = send(t, s, protocol.NewImageRequest("a", "a", 1))
	require.NoError(t, err)
	ir, err := protocol.DecodeReply[protocol.ImageReply](reply)
	require.NoError(t, err)
	assert.Equal(t, protocol.ImageReply{Bytes: []byte("png"), Index: 1}, ir)

	reply, err = send(t, s, protocol.NewAudioRequest("a", "a", 2))
	require.NoError(t, err)
	ar, err := protocol.DecodeReply[protocol.AudioReply](reply)
	require.NoError(t, err)
	assert.Equal(t, protocol.AudioReply{Bytes: []byte("mp3"), Index: 2, FileName: "song.mp3"}, ar)

	_, err = send(t, s, protocol.NewFileRequest("a", "a", 9))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestHandle_ReactAndEdit(t *testing.T) {
	s := newService(t, "")
	connect(t, s, "a", "")
	connect(t, s, "b", "")

	_, err := send(t, s, protocol.NewPost("a", "a", "typo", nil))
	require.NoError(t, err)

	_, err = send(t, s, protocol.NewReaction("b", "b", "👍", 0))
	require.NoError(t, err)
	_, err = send(t, s, protocol.NewReaction("a", "a", "👍", 0))
	require.NoError(t, err)

	_, err = send(t, s, protocol.NewReaction("a", "a", "👍", 5))
	assert.ErrorIs(t, err, common.ErrIndexOutOfRange)

	fixed := "fixed"
	_, err = send(t, s, protocol.NewEdit("b", "b", 0, &fixed))
	assert.ErrorIs(t, err, common.ErrNotOwner)

	_, err = send(t, s, protocol.NewEdit("a", "a", 0, &fixed))
	require.NoError(t, err)

	outs := syncAll(t, s, "a")
	require.Len(t, outs, 1)
	assert.Equal(t, protocol.NormalMessage{Text: "fixed", Edited: true}, outs[0].Payload)
	assert.Equal(t, int64(2), outs[0].Reactions.Count("👍"))
}

func TestHandle_EditUploadIsWrongKind(t *testing.T) {
	s := newService(t, "")
	connect(t, s, "a", "")
	_, err := send(t, s, protocol.NewUploadFromFile("a", "a", "a.bin", []byte{0}, nil))
	require.NoError(t, err)

	_, err = send(t, s, protocol.NewEdit("a", "a", 0, nil))
	assert.ErrorIs(t, err, common.ErrWrongPayloadKind)
}

func TestHandle_Disconnect(t *testing.T) {
	s := newService(t, "")
	connect(t, s, "a", "")

	reply, err := send(t, s, protocol.NewDisconnect("a", "a", "", nil))
	require.NoError(t, err)
	assert.Equal(t, common.ReplyDisconnected, reply)

	_, err = send(t, s, protocol.NewPost("a", "a", "hi", nil))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestHandle_SeenWatermark(t *testing.T) {
	s := newService(t, "")
	connect(t, s, "a", "")
	connect(t, s, "b", "")

	_, err := send(t, s, protocol.NewPost("a", "a", "hi", nil))
	require.NoError(t, err)

	seen := 0
	_, err = send(t, s, protocol.NewSyncCounts("b", "b", 1, &seen))
	require.NoError(t, err)

	outs := syncAll(t, s, "a")
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Seen)
}
