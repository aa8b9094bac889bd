package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/correlation"
	apperrors "github.com/bruhmagedon/advanced-jwt-server/internal/platform/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedErrors map[string]int

func (r recordedErrors) RecordError(errorType string) { r[errorType]++ }

func TestMiddlewareWithStructuredError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	recorder := recordedErrors{}

	handler := ErrorHandlingMiddleware(recorder)(func(c echo.Context) error {
		return apperrors.ValidationError("invalid input")
	})

	err := handler(c)
	require.NoError(t, err) // ErrorHandlingMiddleware handles the error, doesn't return it

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
	assert.Equal(t, 1, recorder["validation"])
}

func TestMiddlewareWithStandardError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware(nil)(func(c echo.Context) error {
		return errors.New("standard error")
	})

	err := handler(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, apperrors.TypeInternal, resp.Type)
}

func TestMiddlewareWithNoError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	recorder := recordedErrors{}

	handler := ErrorHandlingMiddleware(recorder)(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	err := handler(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
	assert.Empty(t, recorder)
}

func TestMiddlewareRendersEchoHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantType    apperrors.ErrorType
		wantMessage string
	}{
		{"not found", echo.ErrNotFound, http.StatusNotFound, apperrors.TypeNotFound, "Not Found"},
		{"method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, apperrors.TypeNotFound, "Method Not Allowed"},
		{"payload too large", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, apperrors.TypeValidation, "Request Entity Too Large"},
		{"custom message", echo.NewHTTPError(http.StatusBadRequest, "Syntax error"), http.StatusBadRequest, apperrors.TypeValidation, "Syntax error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), rec)
			recorder := recordedErrors{}

			handler := ErrorHandlingMiddleware(recorder)(func(c echo.Context) error {
				return tt.err
			})

			require.NoError(t, handler(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Type)
			assert.Equal(t, tt.wantMessage, resp.Error)
			assert.Nil(t, resp.Context)
			assert.Equal(t, 1, recorder[string(tt.wantType)])
		})
	}
}

func TestPipelineRendersUnknownRouteAsStructuredError(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/no-such-route", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.TypeNotFound, resp.Type)
	assert.Equal(t, "Not Found", resp.Error)
	assert.NotContains(t, rec.Body.String(), `"message"`)

	rec = serve(srv, httptest.NewRequest(http.MethodPost, "/version", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.TypeNotFound, resp.Type)
}

func TestMiddlewareHidesConfigurationContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware(nil)(func(c echo.Context) error {
		return apperrors.MissingConfigurationError("COOKIES_SECRET")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"context"`)
}

func TestMiddlewareAllErrorTypes(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperrors.Error
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{"validation", apperrors.ValidationError("invalid"), http.StatusBadRequest, apperrors.TypeValidation},
		{"not_found", apperrors.NotFoundError("missing"), http.StatusNotFound, apperrors.TypeNotFound},
		{"rate_limited", apperrors.RateLimitedError("slow down"), http.StatusTooManyRequests, apperrors.TypeRateLimited},
		{"internal", apperrors.InternalError("failed", errors.New("cause")), http.StatusInternalServerError, apperrors.TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := ErrorHandlingMiddleware(nil)(func(c echo.Context) error {
				return tt.err
			})

			require.NoError(t, handler(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Type)
		})
	}
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		code     int
		wantType apperrors.ErrorType
	}{
		{http.StatusBadRequest, apperrors.TypeValidation},
		{http.StatusUnsupportedMediaType, apperrors.TypeValidation},
		{http.StatusNotFound, apperrors.TypeNotFound},
		{http.StatusMethodNotAllowed, apperrors.TypeNotFound},
		{http.StatusConflict, apperrors.TypeConflict},
		{http.StatusTooManyRequests, apperrors.TypeRateLimited},
		{http.StatusServiceUnavailable, apperrors.TypeExternal},
		{http.StatusTeapot, apperrors.TypeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			got := WrapHTTPError(echo.NewHTTPError(tt.code))
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}

func TestWrapHTTPError_KeepsMessageAndCause(t *testing.T) {
	cause := errors.New("json: cannot unmarshal")
	httpErr := echo.NewHTTPError(http.StatusBadRequest, "Syntax error").SetInternal(cause)

	got := WrapHTTPError(httpErr)
	assert.Equal(t, "Syntax error", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestCorrelationMiddleware(t *testing.T) {
	t.Run("generates id", func(t *testing.T) {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		var seen string
		err := correlationMiddleware(func(c echo.Context) error {
			seen, _ = correlation.ID(c.Request().Context())
			return nil
		})(c)

		require.NoError(t, err)
		assert.Len(t, seen, 8)
		assert.Equal(t, seen, rec.Header().Get(correlation.Header))
	})

	t.Run("honours inbound id", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(correlation.Header, "req-1234")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen string
		require.NoError(t, correlationMiddleware(func(c echo.Context) error {
			seen, _ = correlation.ID(c.Request().Context())
			return nil
		})(c))

		assert.Equal(t, "req-1234", seen)
		assert.Equal(t, "req-1234", rec.Header().Get(correlation.Header))
	})
}

func TestSecureHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/version", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
}
