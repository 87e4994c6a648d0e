package protocol

// OutputKind discriminates Output payloads.
type OutputKind string

const (
	OutputUpload OutputKind = "upload"
	OutputNormal OutputKind = "normal"
	OutputImage  OutputKind = "image"
	OutputAudio  OutputKind = "audio"
)

// OutputPayload is one Output variant. Index fields point into the
// server's byte-store, not into the ledger.
type OutputPayload interface {
	OutputKind() OutputKind
}

type UploadMessage struct {
	FileName string `json:"file_name"`
	Index    int    `json:"index"`
}

type NormalMessage struct {
	Text   string `json:"text"`
	Edited bool   `json:"edited"`
}

type ImageMessage struct {
	Index int `json:"index"`
}

type AudioMessage struct {
	FileName string `json:"file_name"`
	Index    int    `json:"index"`
}

func (UploadMessage) OutputKind() OutputKind { return OutputUpload }
func (NormalMessage) OutputKind() OutputKind { return OutputNormal }
func (ImageMessage) OutputKind() OutputKind  { return OutputImage }
func (AudioMessage) OutputKind() OutputKind  { return OutputAudio }

// Output is a ledger record as stored by the server and broadcast on sync.
type Output struct {
	ReplyTo   *int
	Payload   OutputPayload
	Author    string
	Timestamp string
	Reactions ReactionSet
	SenderID  string
	// Seen is advisory and not authoritative.
	Seen bool
}

// ReactionCount is one entry of a ReactionSet.
type ReactionCount struct {
	Char  string `json:"char"`
	Count int64  `json:"count"`
}

// ReactionSet is a multiset of reaction characters. Order carries no meaning.
type ReactionSet []ReactionCount

// Add increments the count for char, creating the entry at 1 if absent.
func (rs ReactionSet) Add(char string) ReactionSet {
	for i := range rs {
		if rs[i].Char == char {
			rs[i].Count++
			return rs
		}
	}
	return append(rs, ReactionCount{Char: char, Count: 1})
}

// Count returns how many times char was added.
func (rs ReactionSet) Count(char string) int64 {
	for _, r := range rs {
		if r.Char == char {
			return r.Count
		}
	}
	return 0
}

func (rs ReactionSet) Clone() ReactionSet {
	if rs == nil {
		return nil
	}
	return append(ReactionSet(nil), rs...)
}

// Clone returns a copy of o that shares no mutable state with it.
func (o Output) Clone() Output {
	c := o
	c.Reactions = o.Reactions.Clone()
	if o.ReplyTo != nil {
		r := *o.ReplyTo
		c.ReplyTo = &r
	}
	return c
}
