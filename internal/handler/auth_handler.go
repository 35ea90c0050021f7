package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"feedkeep/backend/internal/auth"
)

// AuthHandler serves login/logout/session-check.
type AuthHandler struct {
	credentials *auth.CredentialStore
	sessions    *auth.SessionManager
}

// NewAuthHandler returns an AuthHandler backed by credentials and sessions.
func NewAuthHandler(credentials *auth.CredentialStore, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{credentials: credentials, sessions: sessions}
}

// Login handles POST /api/login. Credentials arrive as the userid/
// userpass headers (not underscored, per §6.2) rather than a JSON body.
func (h *AuthHandler) Login(c echo.Context) error {
	name := c.Request().Header.Get(auth.UserIDHeader)
	password := c.Request().Header.Get(auth.UserPassHeader)
	if name == "" || password == "" {
		return c.NoContent(http.StatusBadRequest)
	}

	userID, err := h.credentials.ValidatePassword(name, password)
	if err != nil {
		return c.NoContent(http.StatusUnauthorized)
	}

	token, err := h.sessions.Issue(userID)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.NoContent(http.StatusOK)
}

// Logout handles POST /api/logout: it revokes the session server-side
// so the cookie cannot be used again even before its natural expiry, then
// clears the cookie client-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(auth.CookieName); err == nil {
		h.sessions.Revoke(cookie.Value)
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.NoContent(http.StatusOK)
}

// TestAuthCookie handles POST /api/test_auth_cookie: reaching the
// handler at all means SessionAuthMiddleware already accepted the cookie.
func (h *AuthHandler) TestAuthCookie(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
