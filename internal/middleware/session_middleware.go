package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const SessionCookieName = "rec_session"

// EnsureSession guarantees every visitor carries a rec_session cookie so
// anonymous personalization has a stable identifier. Handlers read the
// session id via SessionID.
func EnsureSession(ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := c.Cookie(SessionCookieName); err != nil {
				cookie := &http.Cookie{
					Name:     SessionCookieName,
					Value:    uuid.NewString(),
					Path:     "/",
					Expires:  time.Now().Add(ttl),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				}
				c.SetCookie(cookie)
				// make the fresh id visible to this request's handler too
				c.Request().AddCookie(cookie)
			}

			return next(c)
		}
	}
}

// SessionID returns the visitor's session id, or "" when absent.
func SessionID(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
