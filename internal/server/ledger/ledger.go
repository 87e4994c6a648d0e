// Package ledger holds the server's ordered list of accepted messages.
//
// The ledger is append-only. The only in-place mutations are reaction
// counting and text edits, and both address an existing index. All
// mutations are serialized by one mutex; reads copy the requested tail
// under a read lock so replies are built without holding it.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/logging"
	"github.com/dmitrijs2005/matthias/internal/protocol"
	"github.com/dmitrijs2005/matthias/internal/server/metrics"
)

// Store persists ledger records. Append is called with the index the
// record is about to take; Update replaces the record at index.
type Store interface {
	Append(ctx context.Context, index int, out protocol.Output) error
	Update(ctx context.Context, index int, out protocol.Output) error
	LoadAll(ctx context.Context) ([]protocol.Output, error)
}

type Ledger struct {
	mu      sync.RWMutex
	outputs []protocol.Output
	seen    map[string]int
	store   Store
	logger  logging.Logger
}

// New returns an empty ledger. store may be nil for a memory-only ledger.
func New(store Store, l logging.Logger) *Ledger {
	if l == nil {
		l = logging.Nop{}
	}
	return &Ledger{
		seen:   make(map[string]int),
		store:  store,
		logger: l.With("module", "ledger"),
	}
}

// Load replaces the in-memory records with everything the store holds.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	outs, err := l.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	l.mu.Lock()
	l.outputs = outs
	metrics.SetLedgerLength(len(outs))
	l.mu.Unlock()

	l.logger.Info(ctx, "Ledger loaded", "count", len(outs))
	return nil
}

// Append stores out at the next index and returns that index.
func (l *Ledger) Append(ctx context.Context, out protocol.Output) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := len(l.outputs)
	if l.store != nil {
		if err := l.store.Append(ctx, idx, out); err != nil {
			return 0, err
		}
	}
	l.outputs = append(l.outputs, out.Clone())
	metrics.SetLedgerLength(len(l.outputs))
	return idx, nil
}

// React adds char to the reaction set of the record at target.
func (l *Ledger) React(ctx context.Context, target int, char string) error {
	return l.mutate(ctx, target, func(out *protocol.Output) error {
		out.Reactions = out.Reactions.Add(char)
		return nil
	})
}

// Edit replaces the text of the Normal record at target and marks it edited.
func (l *Ledger) Edit(ctx context.Context, target int, text string) error {
	return l.mutate(ctx, target, editText(text))
}

// EditOwned is Edit restricted to the sender that created the record.
func (l *Ledger) EditOwned(ctx context.Context, target int, text, senderID string) error {
	edit := editText(text)
	return l.mutate(ctx, target, func(out *protocol.Output) error {
		if out.SenderID != senderID {
			return fmt.Errorf("edit %d: %w", target, common.ErrNotOwner)
		}
		return edit(out)
	})
}

func editText(text string) func(*protocol.Output) error {
	return func(out *protocol.Output) error {
		if _, ok := out.Payload.(protocol.NormalMessage); !ok {
			return fmt.Errorf("edit %s message: %w", out.Payload.OutputKind(), common.ErrWrongPayloadKind)
		}
		out.Payload = protocol.NormalMessage{Text: text, Edited: true}
		return nil
	}
}

// mutate applies fn to a copy of the record at target and swaps the copy
// in only after fn and the store both succeed.
func (l *Ledger) mutate(ctx context.Context, target int, fn func(*protocol.Output) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if target < 0 || target >= len(l.outputs) {
		return fmt.Errorf("index %d of %d: %w", target, len(l.outputs), common.ErrIndexOutOfRange)
	}

	next := l.outputs[target].Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if l.store != nil {
		if err := l.store.Update(ctx, target, next); err != nil {
			return err
		}
	}
	l.outputs[target] = next
	return nil
}

// SyncDelta returns copies of every record from index known onwards.
// A known count at or past the end yields an empty slice; a negative one
// is treated as zero.
//
// A returned record has Seen set when a sender other than its author has
// marked it seen.
func (l *Ledger) SyncDelta(known int) []protocol.Output {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if known < 0 {
		known = 0
	}
	if known >= len(l.outputs) {
		return []protocol.Output{}
	}

	first, second := l.topWatermarks()

	tail := l.outputs[known:]
	delta := make([]protocol.Output, len(tail))
	for i, out := range tail {
		c := out.Clone()
		wm := first.index
		if first.sender == out.SenderID {
			wm = second.index
		}
		c.Seen = known+i <= wm
		delta[i] = c
	}
	return delta
}

type watermark struct {
	sender string
	index  int
}

func (l *Ledger) topWatermarks() (watermark, watermark) {
	first := watermark{index: -1}
	second := watermark{index: -1}
	for s, idx := range l.seen {
		switch {
		case idx > first.index:
			second = first
			first = watermark{sender: s, index: idx}
		case idx > second.index:
			second = watermark{sender: s, index: idx}
		}
	}
	return first, second
}

// MarkSeen records that senderID has seen every record up to index.
// Watermarks only move forward and out-of-range indices are clamped or
// ignored; the call never fails.
func (l *Ledger) MarkSeen(senderID string, index int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || len(l.outputs) == 0 {
		return
	}
	if index >= len(l.outputs) {
		index = len(l.outputs) - 1
	}
	if cur, ok := l.seen[senderID]; ok && cur >= index {
		return
	}
	l.seen[senderID] = index
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.outputs)
}

// Get returns a copy of the record at index.
func (l *Ledger) Get(index int) (protocol.Output, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.outputs) {
		return protocol.Output{}, fmt.Errorf("index %d of %d: %w", index, len(l.outputs), common.ErrIndexOutOfRange)
	}
	return l.outputs[index].Clone(), nil
}
