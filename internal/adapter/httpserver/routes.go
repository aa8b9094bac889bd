package httpserver

import (
	"log/slog"

	"github.com/bruhmagedon/advanced-jwt-server/internal/adapter/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(correlationMiddleware)
	if s.httpMetrics != nil {
		s.echo.Use(s.httpMetrics.Middleware())
		s.echo.Use(ErrorHandlingMiddleware(s.httpMetrics))
	} else {
		s.echo.Use(ErrorHandlingMiddleware(nil))
	}

	s.echo.Use(s.cookieParserMiddleware())
	slog.Debug("Installed cookie parser")

	s.echo.Validator = newRequestValidator()
	slog.Debug("Installed request validation")

	s.echo.Use(corsMiddleware(s.config.AllowedOrigin))
	slog.Debug("Installed CORS policy", "allowed_origin", s.config.AllowedOrigin)

	s.echo.Use(s.setupSecureHeadersMiddleware())
	if s.config.RateLimitRPS > 0 {
		s.echo.Use(newRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst))
	}

	s.registerHealthRoutes()
	if s.registry != nil {
		s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))
	}
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}

// The API serves no HTML, so the policy forbids everything a browser could render.
func (s *Server) setupSecureHeadersMiddleware() echo.MiddlewareFunc {
	cfg := middleware.SecureConfig{
		XSSProtection:         "",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	if !s.config.Mode.IsDevelopment() {
		cfg.HSTSMaxAge = 63072000 // 2 years; only sent over HTTPS
	}
	return middleware.SecureWithConfig(cfg)
}
