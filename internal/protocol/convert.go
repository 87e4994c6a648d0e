package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotDisplayable is the panic value raised when a request-only or
// mutation-only envelope reaches the ledger conversion. It signals a server
// bug, never bad input.
var ErrNotDisplayable = errors.New("envelope kind is never stored in the ledger")

// NewOutput builds the ledger record for an accepted Post or Upload.
//
// For a Post the result is a NormalMessage with the trimmed text and kind is
// ignored. For an Upload, kind selects UploadMessage, ImageMessage or
// AudioMessage; index is the byte-store slot the server assigned to the bytes.
func NewOutput(h Header, p Appendable, index int, kind OutputKind, reactions ReactionSet, senderID string) Output {
	out := Output{
		ReplyTo:   h.ReplyTo,
		Author:    h.Author,
		Timestamp: h.Timestamp,
		Reactions: reactions,
		SenderID:  senderID,
	}

	switch v := p.(type) {
	case Post:
		out.Payload = NormalMessage{Text: strings.TrimSpace(v.Text)}
	case Upload:
		switch kind {
		case OutputUpload:
			out.Payload = UploadMessage{FileName: v.FileName(), Index: index}
		case OutputImage:
			out.Payload = ImageMessage{Index: index}
		case OutputAudio:
			out.Payload = AudioMessage{FileName: v.FileName(), Index: index}
		default:
			panic(fmt.Errorf("%w: upload cannot become %q", ErrNotDisplayable, kind))
		}
	default:
		panic(fmt.Errorf("%w: %T", ErrNotDisplayable, p))
	}

	return out
}

// ToOutput is NewOutput for callers holding a whole Envelope. It panics with
// ErrNotDisplayable for every variant other than Post and Upload.
func ToOutput(e Envelope, index int, kind OutputKind, reactions ReactionSet, senderID string) Output {
	p, ok := e.Payload.(Appendable)
	if !ok {
		k := Kind("<nil>")
		if e.Payload != nil {
			k = e.Payload.Kind()
		}
		panic(fmt.Errorf("%w: %s", ErrNotDisplayable, k))
	}
	return NewOutput(e.Header, p, index, kind, reactions, senderID)
}
