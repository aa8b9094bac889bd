package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// exposedHeaders are readable by the allowed origin's scripts.
var exposedHeaders = []string{"set-cookie"}

// corsMiddleware admits exactly one origin, with credentials. Requests from any
// other origin get no Access-Control-Allow-Origin header and are refused by the browser.
func corsMiddleware(allowedOrigin string) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{allowedOrigin},
		AllowCredentials: true,
		ExposeHeaders:    exposedHeaders,
	})
}
