package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"feedkeep/backend/internal/collection"
	"feedkeep/backend/internal/entrykey"
	"feedkeep/backend/internal/feedfetch"
	"feedkeep/backend/internal/refresh"
	"feedkeep/backend/internal/registry"
)

// ProbeTimeout bounds a subscribe-time feed probe.
const ProbeTimeout = 10 * time.Second

// UserRefreshTimeout bounds a user-initiated "update feeds" refresh.
const UserRefreshTimeout = 5 * time.Second

// FeedHandler serves the feed-collection endpoints of §6.1: probing a
// candidate URL, adding feeds, listing a filtered view, and
// mutating feed metadata and entry read state.
type FeedHandler struct {
	registry *registry.Registry
	fetcher  *feedfetch.Fetcher
	pipeline *refresh.Pipeline
}

// NewFeedHandler returns a FeedHandler operating on reg, using fetcher for
// one-off probes and pipeline for user-initiated refreshes.
func NewFeedHandler(reg *registry.Registry, fetcher *feedfetch.Fetcher, pipeline *refresh.Pipeline) *FeedHandler {
	return &FeedHandler{registry: reg, fetcher: fetcher, pipeline: pipeline}
}

// IsURLAnRSSFeed handles POST /api/is_url_an_rss_feed.
func (h *FeedHandler) IsURLAnRSSFeed(c echo.Context) error {
	var req IsURLAnRSSFeedRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ProbeTimeout)
	defer cancel()

	ok, info := h.fetcher.Probe(ctx, req.URL)
	var result Result[string]
	if ok {
		result = OkResult(info.Name)
	} else {
		result = ErrResult[string]("could not fetch or parse feed")
	}

	return c.JSON(http.StatusOK, IsURLAnRSSFeedResponse{RequestedURL: req.URL, Result: result})
}

// AddFeed handles POST /api/add_feed.
func (h *FeedHandler) AddFeed(c echo.Context) error {
	userID, ok := UserIDFromContext(c)
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}

	var req AddFeedRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	h.registry.Update(userID, func(uc *collection.UserCollection) {
		uc.AddFeed(req.URL, feedInfoFromDTO(req.Info))
	})
	return c.NoContent(http.StatusOK)
}

// Feeds handles POST /api/feeds: the view/refresh combined endpoint.
func (h *FeedHandler) Feeds(c echo.Context) error {
	userID, ok := UserIDFromContext(c)
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}

	var req FeedsRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if req.AdditionalAction == "UpdateFeeds" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), UserRefreshTimeout)
		defer cancel()
		h.pipeline.RefreshUser(ctx, userID)
	}

	var resp FeedsResponse
	h.registry.View(userID, func(uc collection.UserCollection) {
		entries, total := uc.View(req.Amount, req.Filter.toFilter(), req.entryFilter())
		resp.FeedEntries = toComFeedEntries(entries)
		resp.TotalAvailable = total

		if req.AdditionalAction == "IncludeFeedsInfo" || req.AdditionalAction == "UpdateFeeds" {
			resp.FeedsInfo = map[string]FeedInfoDTO{}
			for url, info := range uc.FeedInfos() {
				resp.FeedsInfo[url] = feedInfoToDTO(info)
			}
		}
	})

	return c.JSON(http.StatusOK, resp)
}

// SetEntryRead handles POST /api/set_entry_read.
func (h *FeedHandler) SetEntryRead(c echo.Context) error {
	userID, ok := UserIDFromContext(c)
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}

	var req SetEntryReadRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	var found bool
	h.registry.Update(userID, func(uc *collection.UserCollection) {
		found = uc.SetEntryRead(req.FeedURL, req.EntryKey, req.Read)
	})
	if !found {
		return c.NoContent(http.StatusUnauthorized)
	}

	return c.JSON(http.StatusOK, req)
}

// SetFeedInfo handles POST /api/set_feed_info.
func (h *FeedHandler) SetFeedInfo(c echo.Context) error {
	userID, ok := UserIDFromContext(c)
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}

	var req SetFeedInfoRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	var found bool
	h.registry.Update(userID, func(uc *collection.UserCollection) {
		found = uc.SetFeedInfo(req.FeedURL, feedInfoFromDTO(req.Info))
	})
	if !found {
		return c.NoContent(http.StatusUnauthorized)
	}

	return c.JSON(http.StatusOK, req)
}

func toComFeedEntries(entries []collection.ViewEntry) []ComFeedEntry {
	out := make([]ComFeedEntry, 0, len(entries))
	for _, e := range entries {
		key, _ := entrykey.Parse(e.Key)
		out = append(out, ComFeedEntry{
			FeedURL: e.URL,
			Key:     key,
			Title:   e.Entry.Title,
			Link:    e.Entry.Link,
			PubDate: e.Entry.PubDate.UTC().Format(time.RFC3339),
			Read:    e.Entry.Read,
		})
	}
	return out
}
