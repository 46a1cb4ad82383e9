// Package server wires the FieldLog server: it opens the configured store,
// runs migrations, builds one operator session per authenticated operator
// and serves them over gRPC until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/registry"
	"github.com/dmitrijs2005/fieldlog/internal/server/config"
	"github.com/dmitrijs2005/fieldlog/internal/server/db"
	"github.com/dmitrijs2005/fieldlog/internal/server/footage"
	"github.com/dmitrijs2005/fieldlog/internal/session"

	gs "github.com/dmitrijs2005/fieldlog/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  *db.Store
	server *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{Level: c.LogLevel, Format: c.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	mode, err := models.ParseMode(c.DefaultMode)
	if err != nil {
		return nil, fmt.Errorf("default mode: %w", err)
	}

	st, err := db.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	repos := st.Repositories()
	tapes := registry.New(repos.Tapes, repos.Inspections, logger, registry.WithPrefix(c.TapePrefix))

	sessions := gs.NewSessions(func(operatorID string, start session.Context) *session.Session {
		return session.New(repos, start, logger.With("operator", operatorID),
			session.WithTapePrefix(c.TapePrefix),
			session.WithROVLabels(c.ROVLabels...))
	}, mode)

	fs := footage.NewService(tapes, c, logger)
	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, sessions, fs, c.SecretKey)

	return &App{config: c, logger: logger, store: st, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a shutdown signal arrives, then
// closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.StoreDriver, "address", app.config.EndpointAddrGRPC)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "closing store", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
