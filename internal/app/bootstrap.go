package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bruhmagedon/advanced-jwt-server/internal/adapter/httpserver"
	"github.com/bruhmagedon/advanced-jwt-server/internal/adapter/metrics"
	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/config"
	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/logging"
	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/version"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// State is the lifecycle position of an App. It only moves forward.
type State int32

const (
	StateInitializing State = iota
	StateListening
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var errNotListening = errors.New("listener not bound")

// App owns the loaded configuration and the HTTP server built from it.
type App struct {
	cfg      *config.Config
	server   *httpserver.Server
	registry *prometheus.Registry
	startup  *metrics.StartupMetrics

	clock     clockwork.Clock
	startedAt time.Time
	state     atomic.Int32
}

// Bootstrap loads configuration from opts, initialises logging and builds the
// application. Any error is returned before a socket is bound.
func Bootstrap(opts config.Options, clock clockwork.Clock) (*App, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Configuration loaded", "mode", cfg.Mode.String(), "port", cfg.Port)

	return New(cfg, clock)
}

// New builds the application from an already loaded config. The server's
// pipeline is installed here; Run binds the port.
func New(cfg *config.Config, clock clockwork.Clock) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	a := &App{
		cfg:       cfg,
		registry:  metrics.NewRegistry(),
		clock:     clock,
		startedAt: clock.Now(),
	}
	a.startup = metrics.NewStartupMetrics(a.registry)

	srv, err := httpserver.NewServer(cfg,
		httpserver.WithRegistry(a.registry),
		httpserver.WithStartupMetrics(a.startup),
		httpserver.WithClock(clock),
		httpserver.WithHealthChecks(httpserver.HealthCheck{
			Name:  "listener",
			Check: a.checkListening,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	a.server = srv

	return a, nil
}

// Run binds the configured port and serves until ctx is cancelled or serving
// fails. A bind failure is returned without ever reaching StateListening.
func (a *App) Run(ctx context.Context) error {
	if err := a.server.Listen(); err != nil {
		a.state.Store(int32(StateStopped))
		return err
	}

	a.state.Store(int32(StateListening))
	a.startup.MarkListening(a.clock.Since(a.startedAt))
	slog.Info("Server listening",
		"addr", a.server.Addr().String(),
		"mode", a.cfg.Mode.String(),
		"allowed_origin", a.cfg.AllowedOrigin,
		version.Get().LogAttr(),
	)

	served := make(chan error, 1)
	go func() { served <- a.server.Serve() }()

	var serveErr error
	select {
	case err := <-served:
		serveErr = err
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		serveErr = <-served
	}

	a.state.Store(int32(StateStopped))
	a.startup.MarkStopped()

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	slog.Info("Server stopped")
	return nil
}

// State reports the current lifecycle state. It is safe for concurrent use.
func (a *App) State() State {
	return State(a.state.Load())
}

// Addr returns the bound address, or nil before the app is listening.
func (a *App) Addr() net.Addr {
	if a.State() != StateListening {
		return nil
	}
	return a.server.Addr()
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) checkListening(context.Context) error {
	if a.State() != StateListening {
		return errNotListening
	}
	return nil
}
