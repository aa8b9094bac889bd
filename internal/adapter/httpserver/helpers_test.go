package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/config"
	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/environment"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin = "https://example.com"
	testSecret = "abc123"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:            environment.NonDevelopment,
		CookiesSecret:   testSecret,
		AllowedOrigin:   testOrigin,
		Port:            "0",
		LogLevel:        "info",
		LogFormat:       "text",
		CookieMaxAge:    time.Hour,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig(), opts...)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()
	srv, err := NewServer(cfg, opts...)
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}
