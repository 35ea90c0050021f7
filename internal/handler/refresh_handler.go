package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"feedkeep/backend/internal/refresh"
)

// RefreshStatusResponse is the wire shape of GET /api/refresh_status.
type RefreshStatusResponse struct {
	IsRefreshing    bool      `json:"is_refreshing"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// RefreshHandler exposes the background refresh pipeline's own status, a
// small addition beyond the distilled spec's endpoint table that mirrors
// the reference implementation's RefreshStatus observability.
type RefreshHandler struct {
	pipeline *refresh.Pipeline
}

// NewRefreshHandler returns a RefreshHandler reporting pipeline's status.
func NewRefreshHandler(pipeline *refresh.Pipeline) *RefreshHandler {
	return &RefreshHandler{pipeline: pipeline}
}

// Status handles GET /api/refresh_status.
func (h *RefreshHandler) Status(c echo.Context) error {
	status := h.pipeline.GetStatus()
	return c.JSON(http.StatusOK, RefreshStatusResponse{
		IsRefreshing:    status.IsRefreshing,
		LastRefreshedAt: status.LastRefreshedAt,
	})
}
