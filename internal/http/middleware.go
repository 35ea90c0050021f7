package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"feedkeep/backend/internal/auth"
	"feedkeep/backend/pkg/logger"
	"feedkeep/backend/pkg/snowflake"
)

const bearerPrefix = "Bearer "

// SessionAuthMiddleware requires a valid session, checking the Authorization
// header first and falling back to the auth_id cookie. On success it stores
// the authenticated user id in the request context under "user_id".
func SessionAuthMiddleware(sessions *auth.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				cookie, err := c.Cookie(auth.CookieName)
				if err != nil {
					return c.NoContent(http.StatusUnauthorized)
				}
				token = cookie.Value
			}

			userID, err := sessions.Validate(token)
			if err != nil {
				return c.NoContent(http.StatusUnauthorized)
			}

			c.Set("user_id", userID)
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

// RequestIDMiddleware stamps every request with a snowflake-generated id,
// exposed to handlers via the echo.Context and echoed back as a response
// header so client and server logs can be correlated.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := snowflake.NextID()
			c.Set("request_id", id)
			c.Response().Header().Set("X-Request-Id", strconv.FormatInt(id, 10))
			return next(c)
		}
	}
}

// RequestLoggerMiddleware logs every request's method, path, status, and
// latency, branching the log level on the response's status class.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			fields := []any{
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"latency", time.Since(start).String(),
			}
			if id, ok := c.Get("request_id").(int64); ok {
				fields = append(fields, "request_id", id)
			}

			switch {
			case status >= 500:
				logger.Error("server_error", fields...)
			case status >= 400:
				logger.Warn("client_error", fields...)
			default:
				logger.Info("ok", fields...)
			}

			return err
		}
	}
}
