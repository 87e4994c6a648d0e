package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/matthias/internal/client/connection"
	"github.com/dmitrijs2005/matthias/internal/common"
)

// Connect joins a server. The address is the first argument, a bookmark
// number, or prompted for with the configured default.
func (a *App) Connect(ctx context.Context, args []string) error {
	acc, err := a.currentAccount()
	if err != nil {
		return err
	}
	if a.isConnected() {
		return errors.New("already connected, disconnect first")
	}

	address, err := a.resolveAddress(args)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Server password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	lastSeen, err := a.history.LastSeen(ctx, address)
	if err != nil {
		return err
	}

	conn, err := a.connector.Connect(ctx, address, connection.Identity{
		Author:   acc.username,
		SenderID: acc.uuid,
		Password: string(password),
		LastSeen: lastSeen,
	})
	switch {
	case errors.Is(err, common.ErrAuth):
		return fmt.Errorf("server rejected the password")
	case errors.Is(err, common.ErrProtocolVersion):
		return fmt.Errorf("server does not accept this client version")
	case err != nil:
		return err
	}

	if conn.State() != connection.Connected {
		// the notifier already told the user
		return nil
	}

	a.setConnection(conn)
	fmt.Fprintf(a.out, "Connected to %s\n", address)
	return a.syncOnce(ctx, false)
}

func (a *App) resolveAddress(args []string) (string, error) {
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			a.mu.Lock()
			defer a.mu.Unlock()
			if n < 0 || n >= len(a.account.BookmarkedAddresses) {
				return "", fmt.Errorf("no bookmark %d", n)
			}
			return a.account.BookmarkedAddresses[n], nil
		}
		return args[0], nil
	}

	address, err := getSimpleText(a.reader, fmt.Sprintf("Enter server address [%s]", a.config.ServerEndpointAddr), a.out)
	if err != nil {
		return "", err
	}
	if address == "" {
		address = a.config.ServerEndpointAddr
	}
	return address, nil
}

// Disconnect leaves the current server and releases the connection.
func (a *App) Disconnect(ctx context.Context) error {
	conn := a.connection()
	if conn == nil {
		return common.ErrNotConnected
	}
	a.setConnection(nil)

	err := conn.Disconnect(ctx)
	_ = conn.Close()
	if err != nil && !errors.Is(err, common.ErrNotConnected) {
		return err
	}
	fmt.Fprintf(a.out, "Disconnected from %s\n", conn.Address())
	return nil
}

// requireConnection returns the live connection or common.ErrNotConnected.
func (a *App) requireConnection() (*connection.Connection, error) {
	conn := a.connection()
	if conn == nil || conn.State() != connection.Connected {
		return nil, common.ErrNotConnected
	}
	return conn, nil
}
