package protocol

// Master is the reply to a SyncCounts envelope: every ledger Output the
// caller has not seen yet, in ledger order.
type Master struct {
	Outputs []Output `json:"outputs"`
}

// Fold merges a delta that starts at ledger position from into the local
// copy. Entries at from and beyond are replaced, so a full resync
// (from == 0) also picks up reactions and edits on older messages.
func (m *Master) Fold(from int, delta []Output) {
	if from < 0 {
		from = 0
	}
	if from > len(m.Outputs) {
		from = len(m.Outputs)
	}
	m.Outputs = append(m.Outputs[:from], delta...)
}

// Len reports how many outputs the local copy holds; it is the KnownCount
// for the next SyncCounts request.
func (m *Master) Len() int {
	return len(m.Outputs)
}

// FileReply answers a FileRequest.
type FileReply struct {
	Bytes    []byte `json:"bytes"`
	FileName string `json:"file_name"`
}

// ImageReply answers an ImageRequest.
type ImageReply struct {
	Bytes []byte `json:"bytes"`
	Index int    `json:"index"`
}

// AudioReply answers an AudioRequest.
type AudioReply struct {
	Bytes    []byte `json:"bytes"`
	Index    int    `json:"index"`
	FileName string `json:"file_name"`
}
