package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/client/client"
	"github.com/dmitrijs2005/fieldlog/internal/client/config"
	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/session"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	client client.Client
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	Mode Mode
	snap *session.Snapshot
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.Server)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{Level: c.LogLevel, Format: "text", Output: os.Stderr})
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, logger, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		client: cl,
		logger: logger.With("module", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	a.Root(ctx)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Warn(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) snapshot() *session.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}

func (a *App) setSnapshot(s *session.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap = s
}

// scope is the discovery scope the console was started with. The mode
// follows the last snapshot once the operator switched it.
func (a *App) scope() discovery.Scope {
	sc := discovery.Scope{JobPackID: a.config.JobPackID, StructureID: a.config.StructureID}
	if s := a.snapshot(); s != nil && s.Scope.Mode != "" {
		sc.Mode = s.Scope.Mode
		return sc
	}
	sc.Mode = a.config.Mode
	if sc.Mode == "" {
		sc.Mode = models.ModeDiving
	}
	return sc
}

// StartOnlineStatusWatcher pings the server every interval until ctx ends,
// giving each ping at most timeout.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval, timeout time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			err := a.client.Ping(pingCtx)
			cancel()

			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
