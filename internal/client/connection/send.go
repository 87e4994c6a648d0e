package connection

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/protocol"
)

func (c *Connection) expectOK(ctx context.Context, env protocol.Envelope) error {
	reply, err := c.exchange(ctx, env)
	if err != nil {
		return err
	}
	if reply != common.ReplyOK {
		return fmt.Errorf("unexpected reply %q: %w", reply, common.ErrInvalidFormat)
	}
	return nil
}

// Post sends a text message, optionally replying to a ledger index.
func (c *Connection) Post(ctx context.Context, text string, replyTo *int) error {
	return c.expectOK(ctx, protocol.NewPost(c.id.Author, c.id.SenderID, text, replyTo))
}

// Upload sends the bytes of the file at path under its base name.
func (c *Connection) Upload(ctx context.Context, path string, data []byte, replyTo *int) error {
	return c.expectOK(ctx, protocol.NewUploadFromFile(c.id.Author, c.id.SenderID, path, data, replyTo))
}

func (c *Connection) React(ctx context.Context, target int, char string) error {
	return c.expectOK(ctx, protocol.NewReaction(c.id.Author, c.id.SenderID, char, target))
}

// Edit replaces the text of one of this sender's messages. A nil text clears it.
func (c *Connection) Edit(ctx context.Context, target int, text *string) error {
	return c.expectOK(ctx, protocol.NewEdit(c.id.Author, c.id.SenderID, target, text))
}

// Sync returns every Output past known. lastSeen, when set, advances this
// sender's read watermark on the server.
func (c *Connection) Sync(ctx context.Context, known int, lastSeen *int) ([]protocol.Output, error) {
	reply, err := c.exchange(ctx, protocol.NewSyncCounts(c.id.Author, c.id.SenderID, known, lastSeen))
	if err != nil {
		return nil, err
	}
	m, err := protocol.DecodeReply[protocol.Master](reply)
	if err != nil {
		return nil, err
	}
	return m.Outputs, nil
}

func (c *Connection) RequestFile(ctx context.Context, index int) (protocol.FileReply, error) {
	return request[protocol.FileReply](ctx, c, protocol.NewFileRequest(c.id.Author, c.id.SenderID, index))
}

func (c *Connection) RequestImage(ctx context.Context, index int) (protocol.ImageReply, error) {
	return request[protocol.ImageReply](ctx, c, protocol.NewImageRequest(c.id.Author, c.id.SenderID, index))
}

func (c *Connection) RequestAudio(ctx context.Context, index int) (protocol.AudioReply, error) {
	return request[protocol.AudioReply](ctx, c, protocol.NewAudioRequest(c.id.Author, c.id.SenderID, index))
}

func request[T any](ctx context.Context, c *Connection, env protocol.Envelope) (T, error) {
	reply, err := c.exchange(ctx, env)
	if err != nil {
		var zero T
		return zero, err
	}
	return protocol.DecodeReply[T](reply)
}
