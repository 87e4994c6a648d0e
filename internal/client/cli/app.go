package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/matthias/internal/client/cache"
	"github.com/dmitrijs2005/matthias/internal/client/client"
	"github.com/dmitrijs2005/matthias/internal/client/config"
	"github.com/dmitrijs2005/matthias/internal/client/connection"
	"github.com/dmitrijs2005/matthias/internal/client/history"
	"github.com/dmitrijs2005/matthias/internal/client/vault"
	"github.com/dmitrijs2005/matthias/internal/cryptox"
	"github.com/dmitrijs2005/matthias/internal/logging"
)

type App struct {
	config    *config.Config
	vault     *vault.Vault
	history   *history.Store
	cache     *cache.Cache
	connector *connection.Connector
	logger    logging.Logger
	reader    *bufio.Reader
	out       io.Writer

	mu      sync.Mutex
	account *vault.Account
	conn    *connection.Connection

	// serializes sync so the watcher and the sync command never fold twice
	syncMu sync.Mutex
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := os.MkdirAll(c.AppRoot, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", c.AppRoot, err)
	}

	v, err := vault.New(c.AccountsDir(), nil, cryptox.DefaultParams)
	if err != nil {
		return nil, err
	}

	h, err := history.Open(ctx, c.HistoryDSN())
	if err != nil {
		return nil, fmt.Errorf("error initializing history: %w", err)
	}

	logger := logging.NewTextLogger(os.Stderr, c.LogLevel).With("module", "cli")

	a := &App{
		config:  c,
		vault:   v,
		history: h,
		cache:   cache.New(c.AppRoot),
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	dial := func(address string) (client.Client, error) {
		return client.NewGRPCClient(address, c.RequestTimeout)
	}
	a.connector = connection.NewConnector(dial, a.notify, logger)
	return a, nil
}

// notify reports connection failures that do not abort the command.
func (a *App) notify(err error) {
	fmt.Fprintf(a.out, "Connection failed: %v\n", err)
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close(context.Background())

	go a.StartSyncWatcher(ctx, a.config.SyncInterval)
	a.Root(ctx)
}

// Close disconnects from the server, if any, and closes the history store.
func (a *App) Close(ctx context.Context) error {
	if conn := a.connection(); conn != nil {
		_ = conn.Disconnect(ctx)
		_ = conn.Close()
	}
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.account != nil
}

func (a *App) isConnected() bool {
	conn := a.connection()
	return conn != nil && conn.State() == connection.Connected
}

func (a *App) connection() *connection.Connection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn
}

func (a *App) setConnection(c *connection.Connection) {
	a.mu.Lock()
	a.conn = c
	a.mu.Unlock()
}

// StartSyncWatcher pulls new messages every interval while connected.
func (a *App) StartSyncWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isConnected() {
				continue
			}
			if err := a.syncOnce(ctx, false); err != nil {
				a.logger.Warn(ctx, "Background sync failed", "error", err)
			}

		case <-ctx.Done():
			return
		}
	}
}
