// Package http wires the HTTP surface: middleware and route table for the
// feed-aggregation API.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"feedkeep/backend/internal/auth"
	"feedkeep/backend/internal/handler"
)

// NewRouter builds the echo.Echo serving every route in §6.1 plus the
// refresh_status supplement, mounted under routePrefix.
func NewRouter(
	feedHandler *handler.FeedHandler,
	authHandler *handler.AuthHandler,
	refreshHandler *handler.RefreshHandler,
	sessions *auth.SessionManager,
	routePrefix string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = customHTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(RequestIDMiddleware())
	e.Use(RequestLoggerMiddleware())

	api := e.Group(routePrefix + "/api")

	api.POST("/login", authHandler.Login)

	authed := api.Group("", SessionAuthMiddleware(sessions))
	authed.POST("/logout", authHandler.Logout)
	authed.POST("/test_auth_cookie", authHandler.TestAuthCookie)
	authed.POST("/is_url_an_rss_feed", feedHandler.IsURLAnRSSFeed)
	authed.POST("/add_feed", feedHandler.AddFeed)
	authed.POST("/feeds", feedHandler.Feeds)
	authed.POST("/set_entry_read", feedHandler.SetEntryRead)
	authed.POST("/set_feed_info", feedHandler.SetFeedInfo)
	authed.GET("/refresh_status", refreshHandler.Status)

	return e
}

func customHTTPErrorHandler(err error, c echo.Context) {
	code := 500
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
	}
	if !c.Response().Committed {
		_ = c.NoContent(code)
	}
}
