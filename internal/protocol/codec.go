package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/common"
)

var ErrUnknownKind = errors.New("unknown payload kind")

type envelopeWire struct {
	ReplyTo   *int            `json:"reply_to"`
	Author    string          `json:"author"`
	SenderID  string          `json:"sender_id"`
	Timestamp string          `json:"timestamp"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
}

type outputWire struct {
	ReplyTo   *int            `json:"reply_to"`
	Kind      OutputKind      `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Author    string          `json:"author"`
	Timestamp string          `json:"timestamp"`
	Reactions ReactionSet     `json:"reactions"`
	SenderID  string          `json:"sender_id"`
	Seen      bool            `json:"seen"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("%w: empty envelope", ErrUnknownKind)
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeWire{
		ReplyTo:   e.ReplyTo,
		Author:    e.Author,
		SenderID:  e.SenderID,
		Timestamp: e.Timestamp,
		Kind:      e.Payload.Kind(),
		Payload:   payload,
	})
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w envelopeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	var p Payload
	var err error
	switch w.Kind {
	case KindPost:
		p, err = unwrap[Post](w.Payload)
	case KindUpload:
		p, err = unwrap[Upload](w.Payload)
	case KindSync:
		p, err = unwrap[Sync](w.Payload)
	case KindFileRequest:
		p, err = unwrap[FileRequest](w.Payload)
	case KindImageRequest:
		p, err = unwrap[ImageRequest](w.Payload)
	case KindAudioRequest:
		p, err = unwrap[AudioRequest](w.Payload)
	case KindReaction:
		p, err = unwrap[Reaction](w.Payload)
	case KindEdit:
		p, err = unwrap[Edit](w.Payload)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}
	if err != nil {
		return err
	}

	*e = Envelope{
		Header: Header{
			ReplyTo:   w.ReplyTo,
			Author:    w.Author,
			SenderID:  w.SenderID,
			Timestamp: w.Timestamp,
		},
		Payload: p,
	}
	return nil
}

func (o Output) MarshalJSON() ([]byte, error) {
	if o.Payload == nil {
		return nil, fmt.Errorf("%w: empty output", ErrUnknownKind)
	}
	payload, err := json.Marshal(o.Payload)
	if err != nil {
		return nil, err
	}
	reactions := o.Reactions
	if reactions == nil {
		reactions = ReactionSet{}
	}
	return json.Marshal(outputWire{
		ReplyTo:   o.ReplyTo,
		Kind:      o.Payload.OutputKind(),
		Payload:   payload,
		Author:    o.Author,
		Timestamp: o.Timestamp,
		Reactions: reactions,
		SenderID:  o.SenderID,
		Seen:      o.Seen,
	})
}

func (o *Output) UnmarshalJSON(b []byte) error {
	var w outputWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	var p OutputPayload
	var err error
	switch w.Kind {
	case OutputUpload:
		p, err = unwrap[UploadMessage](w.Payload)
	case OutputNormal:
		p, err = unwrap[NormalMessage](w.Payload)
	case OutputImage:
		p, err = unwrap[ImageMessage](w.Payload)
	case OutputAudio:
		p, err = unwrap[AudioMessage](w.Payload)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}
	if err != nil {
		return err
	}

	*o = Output{
		ReplyTo:   w.ReplyTo,
		Payload:   p,
		Author:    w.Author,
		Timestamp: w.Timestamp,
		Reactions: w.Reactions,
		SenderID:  w.SenderID,
		Seen:      w.Seen,
	}
	return nil
}

func unwrap[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, fmt.Errorf("%w: missing payload", ErrUnknownKind)
	}
	return v, json.Unmarshal(raw, &v)
}

// EncodeEnvelope renders e as the text sent in one MessageMain request.
func EncodeEnvelope(e Envelope) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeEnvelope parses request text. Failures wrap common.ErrInvalidFormat
// so a receiver can reject the single message and keep serving.
func DecodeEnvelope(s string) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", common.ErrInvalidFormat, err)
	}
	return e, nil
}

// EncodeReply renders any reply value (Master, FileReply, ...) as text.
func EncodeReply(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeReply parses reply text into T. Failures wrap common.ErrInvalidFormat.
func DecodeReply[T any](s string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, fmt.Errorf("%w: %v", common.ErrInvalidFormat, err)
	}
	return v, nil
}
