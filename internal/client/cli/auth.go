package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates a local account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Account password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.vault.Register(userName, password); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return fmt.Errorf("account %q already exists", userName)
		}
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and opens the matching account file.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Account password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	account, err := a.vault.Login(userName, password)
	if err != nil {
		a.logger.Info(ctx, "Login unsuccessful", "username", userName, "error", err)
		return err
	}

	a.mu.Lock()
	a.account = account
	a.mu.Unlock()

	a.logger.Info(ctx, "Login successful", "username", userName)
	fmt.Fprintf(a.out, "Logged in as %s (%d bookmarks)\n", account.Username, len(account.BookmarkedAddresses))
	return nil
}

// Logout disconnects from the server and forgets the account.
func (a *App) Logout(ctx context.Context) error {
	if a.connection() != nil {
		if err := a.Disconnect(ctx); err != nil {
			a.logger.Warn(ctx, "Disconnect on logout failed", "error", err)
		}
	}

	a.mu.Lock()
	a.account = nil
	a.mu.Unlock()
	return nil
}

func (a *App) currentAccount() (*accountView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.account == nil {
		return nil, errNotLoggedIn
	}
	return &accountView{username: a.account.Username, uuid: a.account.UUID}, nil
}

type accountView struct {
	username string
	uuid     string
}

var errNotLoggedIn = errors.New("not logged in")
