package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedkeep/backend/internal/auth"
	"feedkeep/backend/internal/registry"
)

func TestSessionAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	sessions := auth.NewSessionManager([]byte("secret"))
	token, err := sessions.Issue(42)
	require.NoError(t, err)

	e := echo.New()
	var capturedUserID any
	handler := SessionAuthMiddleware(sessions)(func(c echo.Context) error {
		capturedUserID = c.Get("user_id")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/feeds", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, registry.UserID(42), capturedUserID)
}

func TestSessionAuthMiddlewareFallsBackToCookie(t *testing.T) {
	sessions := auth.NewSessionManager([]byte("secret"))
	token, err := sessions.Issue(7)
	require.NoError(t, err)

	e := echo.New()
	handler := SessionAuthMiddleware(sessions)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/feeds", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuthMiddlewareRejectsMissingCredentials(t *testing.T) {
	sessions := auth.NewSessionManager([]byte("secret"))

	e := echo.New()
	handler := SessionAuthMiddleware(sessions)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/feeds", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthMiddlewareRejectsRevokedSession(t *testing.T) {
	sessions := auth.NewSessionManager([]byte("secret"))
	token, err := sessions.Issue(1)
	require.NoError(t, err)
	sessions.Revoke(token)

	e := echo.New()
	handler := SessionAuthMiddleware(sessions)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/feeds", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDMiddlewareStampsResponseHeader(t *testing.T) {
	e := echo.New()
	handler := RequestIDMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/refresh_status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRequestLoggerMiddlewarePassesThroughStatus(t *testing.T) {
	e := echo.New()
	handler := RequestLoggerMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/refresh_status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
