package handler

import (
	"github.com/labstack/echo/v4"

	"feedkeep/backend/internal/registry"
)

// userIDContextKey is the echo.Context key SessionAuthMiddleware stores the
// authenticated user's id under.
const userIDContextKey = "user_id"

// UserIDFromContext returns the authenticated user for the current
// request, set by SessionAuthMiddleware. ok is false for an unauthenticated
// request reaching a handler that did not require auth.
func UserIDFromContext(c echo.Context) (registry.UserID, bool) {
	v := c.Get(userIDContextKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(registry.UserID)
	return id, ok
}
