package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/matthias/internal/protocol"
)

// Sync pulls messages the local history does not have yet. "sync full"
// refetches the whole ledger, which also picks up reactions and edits.
func (a *App) Sync(ctx context.Context, args []string) error {
	full := len(args) > 0 && args[0] == "full"
	return a.syncOnce(ctx, full)
}

func (a *App) syncOnce(ctx context.Context, full bool) error {
	conn, err := a.requireConnection()
	if err != nil {
		return err
	}

	a.syncMu.Lock()
	defer a.syncMu.Unlock()

	address := conn.Address()

	known := 0
	if !full {
		if known, err = a.history.Len(ctx, address); err != nil {
			return err
		}
	}

	lastSeen, err := a.history.LastSeen(ctx, address)
	if err != nil {
		return err
	}

	delta, err := conn.Sync(ctx, known, lastSeen)
	if err != nil {
		return err
	}

	var previous int
	if full {
		if previous, err = a.history.Len(ctx, address); err != nil {
			return err
		}
	}

	if err := a.history.Fold(ctx, address, known, delta); err != nil {
		return err
	}

	own := conn.Identity().SenderID
	for i, out := range delta {
		if known+i < previous {
			continue
		}
		fmt.Fprintln(a.out, formatOutput(known+i, out, own))
	}

	if len(delta) > 0 {
		if err := a.history.SetLastSeen(ctx, address, known+len(delta)-1); err != nil {
			return err
		}
	}
	return nil
}

// History prints every stored message of the current server.
func (a *App) History(ctx context.Context) error {
	conn, err := a.requireConnection()
	if err != nil {
		return err
	}

	m, err := a.history.Load(ctx, conn.Address())
	if err != nil {
		return err
	}
	if m.Len() == 0 {
		fmt.Fprintln(a.out, "No messages yet")
		return nil
	}

	own := conn.Identity().SenderID
	for i, out := range m.Outputs {
		fmt.Fprintln(a.out, formatOutput(i, out, own))
	}
	return nil
}

// formatOutput renders one ledger entry as a single line.
func formatOutput(index int, out protocol.Output, ownSenderID string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%d] %s %s", index, out.Timestamp, out.Author)
	if out.ReplyTo != nil {
		fmt.Fprintf(&b, " (re %d)", *out.ReplyTo)
	}
	b.WriteString(": ")

	switch p := out.Payload.(type) {
	case protocol.NormalMessage:
		b.WriteString(p.Text)
		if p.Edited {
			b.WriteString(" (edited)")
		}
	case protocol.UploadMessage:
		fmt.Fprintf(&b, "[file %s]", p.FileName)
	case protocol.ImageMessage:
		b.WriteString("[image]")
	case protocol.AudioMessage:
		fmt.Fprintf(&b, "[audio %s]", p.FileName)
	}

	for _, r := range out.Reactions {
		fmt.Fprintf(&b, " %s%d", r.Char, r.Count)
	}

	if out.Seen && out.SenderID == ownSenderID {
		b.WriteString(" ✓")
	}
	return b.String()
}
