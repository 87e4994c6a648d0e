package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/client/cache"
	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/filex"
	"github.com/dmitrijs2005/matthias/internal/protocol"
)

// downloadsDir is created under the working directory for fetched files.
const downloadsDir = "Downloads"

// ensureDownloads is a seam for tests.
var ensureDownloads = func() (string, error) { return filex.EnsureSubDir(downloadsDir) }

// Fetch downloads the attachment of a ledger entry. Images and audio go to
// the media cache; other files go to the given directory or ./Downloads.
func (a *App) Fetch(ctx context.Context, args []string) error {
	index, err := parseIndex(args, 0, "fetch <index> [dir]")
	if err != nil {
		return err
	}
	conn, err := a.requireConnection()
	if err != nil {
		return err
	}
	address := conn.Address()

	m, err := a.history.Load(ctx, address)
	if err != nil {
		return err
	}
	if index >= m.Len() {
		return fmt.Errorf("%w: %d", common.ErrIndexOutOfRange, index)
	}

	var path string
	switch p := m.Outputs[index].Payload.(type) {
	case protocol.UploadMessage:
		dir := ""
		if len(args) > 1 {
			dir = args[1]
		} else if dir, err = ensureDownloads(); err != nil {
			return err
		}
		r, err := conn.RequestFile(ctx, p.Index)
		if err != nil {
			return err
		}
		if path, err = cache.SaveFile(dir, r); err != nil {
			return err
		}

	case protocol.ImageMessage:
		if _, err := a.cache.LoadImage(address, p.Index); err == nil {
			path = a.cache.ImagePath(address, p.Index)
			break
		}
		r, err := conn.RequestImage(ctx, p.Index)
		if err != nil {
			return err
		}
		if path, err = a.cache.SaveImage(address, r); err != nil {
			return err
		}

	case protocol.AudioMessage:
		if _, err := a.cache.LoadAudio(address, p.Index); err == nil {
			path = a.cache.AudioPath(address, p.Index)
			break
		}
		r, err := conn.RequestAudio(ctx, p.Index)
		if err != nil {
			return err
		}
		if path, err = a.cache.SaveAudio(address, r); err != nil {
			return err
		}

	default:
		return fmt.Errorf("message %d has no attachment", index)
	}

	fmt.Fprintf(a.out, "Saved to %s\n", path)
	return nil
}
