package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/things/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, path := range []string{"/things/1", "/things/2", "/health/live"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/things/:id", "204")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal))
}

func TestHTTPMetrics_RecordError(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())

	m.RecordError("validation")
	m.RecordError("validation")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("validation")))
}

func TestStartupMetrics(t *testing.T) {
	m := NewStartupMetrics(prometheus.NewRegistry())

	m.MarkListening(1500 * time.Millisecond)
	assert.Equal(t, 1.5, testutil.ToFloat64(m.Duration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Listening))

	m.MarkStopped()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Listening))

	m.RecordCookie("signed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CookiesParsed.WithLabelValues("signed")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewStartupMetrics(reg).MarkListening(time.Second)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jwtserver_bootstrap_listening 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
