package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bruhmagedon/advanced-jwt-server/internal/adapter/metrics"
	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/config"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Server is the echo instance with the installed request pipeline.
type Server struct {
	echo   *echo.Echo
	config *config.Config

	sessionStore *sessions.CookieStore
	healthChecks []HealthCheck

	registry       *prometheus.Registry
	httpMetrics    *metrics.HTTPMetrics
	startupMetrics *metrics.StartupMetrics

	clock     clockwork.Clock
	startTime time.Time
}

// Option customises a Server before its pipeline is installed.
type Option func(*Server)

// WithRegistry exposes reg on /metrics and registers the HTTP metrics on it.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithStartupMetrics records cookie parsing outcomes on m.
func WithStartupMetrics(m *metrics.StartupMetrics) Option {
	return func(s *Server) { s.startupMetrics = m }
}

// WithHealthChecks adds checks run by /health/ready, in order.
func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) { s.healthChecks = append(s.healthChecks, checks...) }
}

// WithClock replaces the real clock used for uptime.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer builds the echo instance and installs the request pipeline:
// cookie parsing keyed by the cookie secret, request validation and the
// single-origin CORS policy. Nothing is bound until Listen.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		sessionStore: setupSessionStore(cfg),
		clock:        clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.startTime = srv.clock.Now()

	if srv.registry != nil {
		srv.httpMetrics = metrics.NewHTTPMetrics(srv.registry)
	}

	srv.registerRoutes()

	return srv, nil
}

// Listen binds the configured port. Startup fails here, before any request is
// accepted, when the port is unavailable.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", ":"+s.config.Port)
	if err != nil {
		return fmt.Errorf("failed to bind port %s: %w", s.config.Port, err)
	}
	s.echo.Listener = ln
	return nil
}

// Serve accepts connections on the listener bound by Listen. It blocks until
// the server is shut down and then returns http.ErrServerClosed.
func (s *Server) Serve() error {
	if s.echo.Listener == nil {
		return errors.New("server is not listening")
	}
	slog.Info("Starting server", "addr", s.Addr().String())
	if err := s.echo.Start(""); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}

// Handler exposes the pipeline for in-process use.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Shutdown stops serving and releases the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	// Serve may never have run; release the bound port either way.
	if s.echo.Listener != nil {
		_ = s.echo.Listener.Close()
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.CookiesSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   !cfg.Mode.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	}
	sessionStore.MaxAge(int(cfg.CookieMaxAge.Seconds()))
	return sessionStore
}
