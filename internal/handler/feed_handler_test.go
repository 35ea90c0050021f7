package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedkeep/backend/internal/collection"
	"feedkeep/backend/internal/feedfetch"
	"feedkeep/backend/internal/refresh"
	"feedkeep/backend/internal/registry"
	"feedkeep/backend/pkg/network"
)

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Example</title>
<item><title>Hello</title><link>https://example.com/1</link><pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate></item>
</channel></rss>`

func newFeedHandler(t *testing.T) (*FeedHandler, *registry.Registry, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	t.Cleanup(srv.Close)

	factory := network.NewClientFactoryForTest(srv.Client())
	fetcher := feedfetch.New(factory)
	reg := registry.New()
	pipeline := refresh.New(reg, fetcher)

	return NewFeedHandler(reg, fetcher, pipeline), reg, srv
}

func withUser(c echo.Context, id registry.UserID) {
	c.Set(userIDContextKey, id)
}

func TestIsURLAnRSSFeedReturnsOkForValidFeed(t *testing.T) {
	h, _, srv := newFeedHandler(t)
	e := echo.New()

	body, _ := json.Marshal(IsURLAnRSSFeedRequest{URL: srv.URL})
	req := httptest.NewRequest(http.MethodPost, "/api/is_url_an_rss_feed", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.IsURLAnRSSFeed(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp IsURLAnRSSFeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result.Ok)
	assert.Equal(t, "Example", *resp.Result.Ok)
}

func TestAddFeedRequiresAuthenticatedUser(t *testing.T) {
	h, _, _ := newFeedHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/add_feed", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.AddFeed(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddFeedThenFeedsReturnsEntry(t *testing.T) {
	h, reg, srv := newFeedHandler(t)
	e := echo.New()
	reg.EnsureUser(1)

	addBody, _ := json.Marshal(AddFeedRequest{URL: srv.URL, Info: FeedInfoDTO{Name: "", Tags: []string{"news"}}})
	addReq := httptest.NewRequest(http.MethodPost, "/api/add_feed", bytes.NewReader(addBody))
	addReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	addRec := httptest.NewRecorder()
	addCtx := e.NewContext(addReq, addRec)
	withUser(addCtx, 1)
	require.NoError(t, h.AddFeed(addCtx))
	require.Equal(t, http.StatusOK, addRec.Code)

	feedsBody, _ := json.Marshal(FeedsRequest{
		Filter:           FeedsFilterDTO{Kind: "All"},
		EntryFilter:      "All",
		Amount:           10,
		AdditionalAction: "UpdateFeeds",
	})
	feedsReq := httptest.NewRequest(http.MethodPost, "/api/feeds", bytes.NewReader(feedsBody))
	feedsReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	feedsRec := httptest.NewRecorder()
	feedsCtx := e.NewContext(feedsReq, feedsRec)
	withUser(feedsCtx, 1)
	require.NoError(t, h.Feeds(feedsCtx))
	require.Equal(t, http.StatusOK, feedsRec.Code)

	var resp FeedsResponse
	require.NoError(t, json.Unmarshal(feedsRec.Body.Bytes(), &resp))
	require.Len(t, resp.FeedEntries, 1)
	assert.Equal(t, "Hello", resp.FeedEntries[0].Title)
	assert.Equal(t, 1, resp.TotalAvailable)
	require.Contains(t, resp.FeedsInfo, srv.URL)
	assert.Equal(t, "Example", resp.FeedsInfo[srv.URL].Name)
}

func TestSetEntryReadUnknownFeedReturnsUnauthorized(t *testing.T) {
	h, reg, _ := newFeedHandler(t)
	e := echo.New()
	reg.EnsureUser(1)

	body, _ := json.Marshal(SetEntryReadRequest{FeedURL: "https://missing.example/rss", Read: true})
	req := httptest.NewRequest(http.MethodPost, "/api/set_entry_read", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withUser(c, 1)

	require.NoError(t, h.SetEntryRead(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSetFeedInfoEchoesRequestOnSuccess(t *testing.T) {
	h, reg, srv := newFeedHandler(t)
	e := echo.New()
	reg.EnsureUser(1)
	reg.Update(1, func(uc *collection.UserCollection) {
		uc.AddFeed(srv.URL, collection.FeedInfo{Name: "Example"})
	})

	body, _ := json.Marshal(SetFeedInfoRequest{FeedURL: srv.URL, Info: FeedInfoDTO{Name: "Renamed", Tags: []string{"tag"}}})
	req := httptest.NewRequest(http.MethodPost, "/api/set_feed_info", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withUser(c, 1)

	require.NoError(t, h.SetFeedInfo(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SetFeedInfoRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Renamed", resp.Info.Name)
}
