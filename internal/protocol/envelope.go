// Package protocol defines the messages exchanged over the single
// MessageMain RPC: the Envelope a client sends, the Output a server stores
// in its ledger and broadcasts, and the byte-bearing replies to file, image
// and audio requests.
//
// Envelope and Output are tagged unions. On the wire each is a JSON object
// whose "kind" field names the variant and whose "payload" field holds it.
package protocol

// Kind discriminates Envelope payloads.
type Kind string

const (
	KindPost         Kind = "post"
	KindUpload       Kind = "upload"
	KindSync         Kind = "sync"
	KindFileRequest  Kind = "file_request"
	KindImageRequest Kind = "image_request"
	KindAudioRequest Kind = "audio_request"
	KindReaction     Kind = "reaction"
	KindEdit         Kind = "edit"
)

// Payload is one Envelope variant.
type Payload interface {
	Kind() Kind
}

// Appendable is the subset of payloads that become ledger Outputs.
// Only Post and Upload implement it.
type Appendable interface {
	Payload
	appendable()
}

// Header is the metadata every envelope carries regardless of variant.
// ReplyTo is only meaningful for Post and Upload.
type Header struct {
	ReplyTo   *int
	Author    string
	SenderID  string
	Timestamp string
}

// Envelope is a client-to-server request.
type Envelope struct {
	Header
	Payload Payload
}

// Post is a plain text message.
type Post struct {
	Text string `json:"text"`
}

// Upload carries the raw bytes of a file. Name and Extension are optional.
type Upload struct {
	Name      *string `json:"name,omitempty"`
	Extension *string `json:"extension,omitempty"`
	Bytes     []byte  `json:"bytes"`
}

// SyncMode discriminates what a Sync envelope asks of the server.
type SyncMode string

const (
	SyncCounts SyncMode = "sync_counts"
	Connect    SyncMode = "connect"
	Disconnect SyncMode = "disconnect"
)

// Sync requests a delta, registers with the server or deregisters.
// KnownCount is read only in SyncCounts mode; Password only in Connect.
type Sync struct {
	Mode          SyncMode `json:"mode"`
	KnownCount    *int     `json:"known_count,omitempty"`
	LastSeenIndex *int     `json:"last_seen_index,omitempty"`
	Password      string   `json:"password"`
}

// FileRequest asks for the bytes stored at Index in the byte-store.
type FileRequest struct {
	Index int `json:"index"`
}

type ImageRequest struct {
	Index int `json:"index"`
}

type AudioRequest struct {
	Index int `json:"index"`
}

// Reaction adds Char to the reaction set of the ledger entry at TargetIndex.
type Reaction struct {
	Char        string `json:"char"`
	TargetIndex int    `json:"target_index"`
}

// Edit replaces the text of the ledger entry at TargetIndex. A nil NewText
// clears the text.
type Edit struct {
	TargetIndex int     `json:"target_index"`
	NewText     *string `json:"new_text,omitempty"`
}

func (Post) Kind() Kind         { return KindPost }
func (Upload) Kind() Kind       { return KindUpload }
func (Sync) Kind() Kind         { return KindSync }
func (FileRequest) Kind() Kind  { return KindFileRequest }
func (ImageRequest) Kind() Kind { return KindImageRequest }
func (AudioRequest) Kind() Kind { return KindAudioRequest }
func (Reaction) Kind() Kind     { return KindReaction }
func (Edit) Kind() Kind         { return KindEdit }

func (Post) appendable()   {}
func (Upload) appendable() {}

// FileName rebuilds "{name}.{extension}", each part defaulting to "".
func (u Upload) FileName() string {
	return deref(u.Name) + "." + deref(u.Extension)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
