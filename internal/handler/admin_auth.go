package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smalltheater/ticketdesk/internal/middleware"
	"github.com/smalltheater/ticketdesk/internal/utils"
)

// AdminAuthHandler exchanges the shared admin password for a signed,
// short-lived session token carried in an HttpOnly cookie.
type AdminAuthHandler struct {
	PassHash  string // bcrypt hash of the admin password
	JWTSecret string
	TTLMin    int
}

// NewAdminAuthHandler constructs an AdminAuthHandler.
func NewAdminAuthHandler(passHash, jwtSecret string, ttlMin int) *AdminAuthHandler {
	return &AdminAuthHandler{PassHash: passHash, JWTSecret: jwtSecret, TTLMin: ttlMin}
}

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Login handles POST /v1/admin/login.  A wrong password gets the same
// 401 as a missing one; there is nothing to enumerate.
func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req adminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !utils.VerifyPassword(h.PassHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "wrong password"})
	}
	tok, err := utils.NewAdminToken(h.JWTSecret, h.TTLMin)
	if err != nil {
		return writeError(c, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"expiresAt": tok.Exp.Format(time.RFC3339)})
}

// Logout handles POST /v1/admin/logout by expiring the session cookie.
func (h *AdminAuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}
