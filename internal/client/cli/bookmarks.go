package cli

import (
	"context"
	"fmt"
)

// Bookmarks lists, adds or removes saved server addresses:
//
//	bookmarks
//	bookmarks add [address]
//	bookmarks rm <n>
//
// "add" without an address bookmarks the current server. Every change
// rewrites the account file.
func (a *App) Bookmarks(ctx context.Context, args []string) error {
	if _, err := a.currentAccount(); err != nil {
		return err
	}

	if len(args) == 0 {
		a.mu.Lock()
		list := append([]string(nil), a.account.BookmarkedAddresses...)
		a.mu.Unlock()

		if len(list) == 0 {
			fmt.Fprintln(a.out, "No bookmarks")
		}
		for i, addr := range list {
			fmt.Fprintf(a.out, "%d) %s\n", i, addr)
		}
		return nil
	}

	switch args[0] {
	case "add":
		address := ""
		if len(args) > 1 {
			address = args[1]
		} else if conn := a.connection(); conn != nil {
			address = conn.Address()
		}
		if address == "" {
			return usage("bookmarks add <address>")
		}

		a.mu.Lock()
		a.account.AddBookmark(address)
		err := a.vault.Save(a.account)
		a.mu.Unlock()
		return err

	case "rm":
		n, err := parseIndex(args, 1, "bookmarks rm <n>")
		if err != nil {
			return err
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		if n >= len(a.account.BookmarkedAddresses) {
			return fmt.Errorf("no bookmark %d", n)
		}
		a.account.RemoveBookmark(n)
		return a.vault.Save(a.account)

	default:
		return usage("bookmarks [add [address] | rm <n>]")
	}
}
