package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func usage(s string) error {
	return fmt.Errorf("usage: %s", s)
}

func parseIndex(args []string, i int, use string) (int, error) {
	if len(args) <= i {
		return 0, usage(use)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 0 {
		return 0, usage(use)
	}
	return n, nil
}

// Say posts the arguments as one message. Without arguments the text is
// read as multiple lines.
func (a *App) Say(ctx context.Context, args []string) error {
	return a.post(ctx, args, nil)
}

// Reply posts a message that answers the ledger entry given first.
func (a *App) Reply(ctx context.Context, args []string) error {
	target, err := parseIndex(args, 0, "reply <index> <text>")
	if err != nil {
		return err
	}
	return a.post(ctx, args[1:], &target)
}

func (a *App) post(ctx context.Context, args []string, replyTo *int) error {
	conn, err := a.requireConnection()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if text == "" {
		text, err = GetMultiline(a.reader, "Enter message", a.out)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if err := conn.Post(ctx, text, replyTo); err != nil {
		return err
	}
	return a.syncOnce(ctx, false)
}

// Upload sends a local file.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("upload <path>")
	}
	conn, err := a.requireConnection()
	if err != nil {
		return err
	}

	path := strings.Join(args, " ")
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := conn.Upload(ctx, path, data, nil); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s (%d bytes)\n", path, len(data))
	return a.syncOnce(ctx, false)
}

// React adds a reaction to a ledger entry.
func (a *App) React(ctx context.Context, args []string) error {
	const use = "react <index> <char>"
	target, err := parseIndex(args, 0, use)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usage(use)
	}
	conn, err := a.requireConnection()
	if err != nil {
		return err
	}
	if err := conn.React(ctx, target, args[1]); err != nil {
		return err
	}
	return a.syncOnce(ctx, true)
}

// Edit replaces the text of one of the user's messages. Without text the
// message is cleared.
func (a *App) Edit(ctx context.Context, args []string) error {
	target, err := parseIndex(args, 0, "edit <index> [text]")
	if err != nil {
		return err
	}
	conn, err := a.requireConnection()
	if err != nil {
		return err
	}

	var text *string
	if len(args) > 1 {
		s := strings.Join(args[1:], " ")
		text = &s
	}
	if err := conn.Edit(ctx, target, text); err != nil {
		return err
	}
	return a.syncOnce(ctx, true)
}
