package protocol

import (
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is the format of Header.Timestamp.
const TimestampLayout = "2006.01.02. 15:04"

var nowFn = time.Now

func newHeader(author, senderID string, replyTo *int) Header {
	return Header{
		ReplyTo:   replyTo,
		Author:    author,
		SenderID:  senderID,
		Timestamp: nowFn().UTC().Format(TimestampLayout),
	}
}

func NewPost(author, senderID, text string, replyTo *int) Envelope {
	return Envelope{Header: newHeader(author, senderID, replyTo), Payload: Post{Text: strings.TrimSpace(text)}}
}

func NewUpload(author, senderID string, u Upload, replyTo *int) Envelope {
	return Envelope{Header: newHeader(author, senderID, replyTo), Payload: u}
}

// NewUploadFromFile splits path into name and extension and attaches data.
// "notes.tar.gz" becomes name "notes.tar" and extension "gz".
func NewUploadFromFile(author, senderID, path string, data []byte, replyTo *int) Envelope {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	ext = strings.TrimPrefix(ext, ".")

	u := Upload{Bytes: data}
	if name != "" {
		u.Name = &name
	}
	if ext != "" {
		u.Extension = &ext
	}
	return NewUpload(author, senderID, u, replyTo)
}

func NewSyncCounts(author, senderID string, knownCount int, lastSeen *int) Envelope {
	return Envelope{
		Header:  newHeader(author, senderID, nil),
		Payload: Sync{Mode: SyncCounts, KnownCount: &knownCount, LastSeenIndex: lastSeen},
	}
}

// NewConnect builds the handshake. lastSeen, when set, is recorded as the
// sender's seen watermark on the server.
func NewConnect(author, senderID, password string, lastSeen *int) Envelope {
	return Envelope{
		Header:  newHeader(author, senderID, nil),
		Payload: Sync{Mode: Connect, Password: password, LastSeenIndex: lastSeen},
	}
}

func NewDisconnect(author, senderID, password string, lastSeen *int) Envelope {
	return Envelope{
		Header:  newHeader(author, senderID, nil),
		Payload: Sync{Mode: Disconnect, Password: password, LastSeenIndex: lastSeen},
	}
}

func NewFileRequest(author, senderID string, index int) Envelope {
	return Envelope{Header: newHeader(author, senderID, nil), Payload: FileRequest{Index: index}}
}

func NewImageRequest(author, senderID string, index int) Envelope {
	return Envelope{Header: newHeader(author, senderID, nil), Payload: ImageRequest{Index: index}}
}

func NewAudioRequest(author, senderID string, index int) Envelope {
	return Envelope{Header: newHeader(author, senderID, nil), Payload: AudioRequest{Index: index}}
}

func NewReaction(author, senderID, char string, target int) Envelope {
	return Envelope{Header: newHeader(author, senderID, nil), Payload: Reaction{Char: char, TargetIndex: target}}
}

// NewEdit builds an Edit for the ledger entry at target. A nil text clears it.
func NewEdit(author, senderID string, target int, text *string) Envelope {
	return Envelope{Header: newHeader(author, senderID, nil), Payload: Edit{TargetIndex: target, NewText: text}}
}
