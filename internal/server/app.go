// Package server initializes and runs the chat server: it picks storage
// backends from the configuration, restores the ledger, and runs the gRPC and
// metrics endpoints until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/matthias/internal/logging"
	"github.com/dmitrijs2005/matthias/internal/server/bytestore"
	"github.com/dmitrijs2005/matthias/internal/server/config"
	"github.com/dmitrijs2005/matthias/internal/server/ledger"
	"github.com/dmitrijs2005/matthias/internal/server/metrics"
	"github.com/dmitrijs2005/matthias/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/matthias/internal/server/services"
	"github.com/dmitrijs2005/matthias/internal/server/sessions"

	gs "github.com/dmitrijs2005/matthias/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	repos          repomanager.RepositoryManager
	messageService *services.MessageService
}

// NewApp wires storage and services. With a DSN the ledger and byte-store
// live in PostgreSQL; with an S3 bucket the byte-store moves to S3.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	app := &App{config: c, logger: logger}

	var (
		store ledger.Store
		blobs bytestore.Store = bytestore.NewMemoryStore()
	)

	if c.DatabaseDSN != "" {
		rm, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.repos = rm

		if err := rm.RunMigrations(ctx); err != nil {
			return nil, app.abort(fmt.Errorf("migrations error: %w", err))
		}

		store = rm.Messages(rm.DB())
		rs, err := bytestore.NewRepoStore(ctx, rm.Blobs(rm.DB()))
		if err != nil {
			return nil, app.abort(err)
		}
		blobs = rs
	}

	if c.S3Bucket != "" {
		s3s, err := openS3(ctx, c)
		if err != nil {
			return nil, app.abort(fmt.Errorf("s3 init error: %w", err))
		}
		blobs = s3s
	}

	l := ledger.New(store, logger)
	if err := l.Load(ctx); err != nil {
		return nil, app.abort(err)
	}

	app.messageService = services.NewMessageService(l, blobs, sessions.NewRegistry(c.SecretSize), c.Password, logger)
	return app, nil
}

func openS3(ctx context.Context, c *config.Config) (*bytestore.S3Store, error) {
	client, err := bytestore.NewS3Client(ctx, bytestore.S3Settings{
		Region:       c.S3Region,
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
	if err != nil {
		return nil, err
	}
	return bytestore.NewS3Store(ctx, client, c.S3Bucket)
}

// abort releases whatever NewApp opened so far and returns err.
func (app *App) abort(err error) error {
	if app.repos != nil {
		_ = app.repos.Close()
	}
	return err
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.messageService, app.config.ShutdownTimeout)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := metrics.NewServer(app.config.MetricsAddr, app.logger).Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if app.repos != nil {
		if err := app.repos.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
