package httpserver

import (
	apperrors "github.com/bruhmagedon/advanced-jwt-server/internal/platform/errors"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

// Context keys populated by the cookie parser.
const (
	contextKeySignedCookies = "signedCookies"
	contextKeyPlainCookies  = "cookies"
)

// cookieParserMiddleware splits request cookies into signed and plain sets.
// A cookie is signed when its value verifies against the cookie secret; a
// tampered or foreign value is only visible as a plain cookie.
func (s *Server) cookieParserMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookies := c.Cookies()
			signed := make(map[string]string, len(cookies))
			plain := make(map[string]string, len(cookies))

			for _, cookie := range cookies {
				var value string
				if err := securecookie.DecodeMulti(cookie.Name, cookie.Value, &value, s.sessionStore.Codecs...); err == nil {
					signed[cookie.Name] = value
					s.recordCookie("signed")
					continue
				}
				plain[cookie.Name] = cookie.Value
				s.recordCookie("plain")
			}

			c.Set(contextKeySignedCookies, signed)
			c.Set(contextKeyPlainCookies, plain)
			return next(c)
		}
	}
}

func (s *Server) recordCookie(kind string) {
	if s.startupMetrics != nil {
		s.startupMetrics.RecordCookie(kind)
	}
}

// SignedCookie returns the verified value of a signed request cookie.
func SignedCookie(c echo.Context, name string) (string, bool) {
	return lookupCookie(c, contextKeySignedCookies, name)
}

// PlainCookie returns an unsigned (or unverifiable) request cookie as sent.
func PlainCookie(c echo.Context, name string) (string, bool) {
	return lookupCookie(c, contextKeyPlainCookies, name)
}

func lookupCookie(c echo.Context, key, name string) (string, bool) {
	cookies, ok := c.Get(key).(map[string]string)
	if !ok {
		return "", false
	}
	v, ok := cookies[name]
	return v, ok
}

// SetSignedCookie signs value with the cookie secret and sets it on the response
// using the store's cookie options.
func (s *Server) SetSignedCookie(c echo.Context, name, value string) error {
	encoded, err := securecookie.EncodeMulti(name, value, s.sessionStore.Codecs...)
	if err != nil {
		return apperrors.InternalError("failed to sign cookie", err).WithContext("cookie", name)
	}
	c.SetCookie(sessions.NewCookie(name, encoded, s.sessionStore.Options))
	return nil
}
