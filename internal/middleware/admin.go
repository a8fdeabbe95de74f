// Package middleware provides shared request processing: the admin
// session gate and the redis token-bucket rate limiter.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smalltheater/ticketdesk/internal/utils"
)

// AdminCookieName is the cookie carrying the admin session token.
const AdminCookieName = "admin_session"

// AdminAuth returns an Echo middleware that requires a valid admin
// session cookie.  The token is minted by the admin login handler
// after the shared password check; every admin operation revalidates
// it so an expired session fails closed.
func AdminAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AdminCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "admin authentication required"})
			}
			if err := utils.VerifyAdminToken(secret, cookie.Value); err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
			}
			return next(c)
		}
	}
}
