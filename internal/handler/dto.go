// Package handler adapts HTTP requests onto the core registry/auth/refresh
// packages, translating between JSON wire shapes and domain types.
package handler

import (
	"feedkeep/backend/internal/collection"
	"feedkeep/backend/internal/entrykey"
)

// Result is a tagged-union wire type mirroring the reference
// implementation's externally-tagged Result<T, E>: exactly one of Ok/Err
// is present.
type Result[T any] struct {
	Ok  *T      `json:"Ok,omitempty"`
	Err *string `json:"Err,omitempty"`
}

// OkResult wraps a success value.
func OkResult[T any](v T) Result[T] {
	return Result[T]{Ok: &v}
}

// ErrResult wraps an error message.
func ErrResult[T any](msg string) Result[T] {
	return Result[T]{Err: &msg}
}

// IsURLAnRSSFeedRequest is the body of POST /api/is_url_an_rss_feed.
type IsURLAnRSSFeedRequest struct {
	URL string `json:"url"`
}

// IsURLAnRSSFeedResponse is the response of POST /api/is_url_an_rss_feed.
type IsURLAnRSSFeedResponse struct {
	RequestedURL string         `json:"requested_url"`
	Result       Result[string] `json:"result"`
}

// FeedInfoDTO is the wire shape of collection.FeedInfo.
type FeedInfoDTO struct {
	Name             string                `json:"name"`
	Tags             []string              `json:"tags"`
	LastUpdateResult collection.UpdateResult `json:"last_update_result"`
}

func feedInfoToDTO(info collection.FeedInfo) FeedInfoDTO {
	tags := info.Tags
	if tags == nil {
		tags = []string{}
	}
	return FeedInfoDTO{Name: info.Name, Tags: tags, LastUpdateResult: info.LastUpdateResult}
}

func feedInfoFromDTO(dto FeedInfoDTO) collection.FeedInfo {
	return collection.FeedInfo{Name: dto.Name, Tags: dto.Tags, LastUpdateResult: dto.LastUpdateResult}
}

// AddFeedRequest is the body of POST /api/add_feed.
type AddFeedRequest struct {
	URL  string      `json:"url"`
	Info FeedInfoDTO `json:"info"`
}

// FeedsFilterDTO mirrors collection.FeedFilter on the wire: exactly one of
// Tag or URL is meaningful, selected by Kind.
type FeedsFilterDTO struct {
	Kind string `json:"kind"`
	Tag  string `json:"tag,omitempty"`
	URL  string `json:"url,omitempty"`
}

func (d FeedsFilterDTO) toFilter() collection.FeedFilter {
	switch d.Kind {
	case "Tag":
		return collection.FeedsWithTag(d.Tag)
	case "Single":
		return collection.SingleFeed(d.URL)
	default:
		return collection.AllFeeds()
	}
}

// FeedsRequest is the body of POST /api/feeds.
type FeedsRequest struct {
	Filter           FeedsFilterDTO `json:"filter"`
	EntryFilter      string         `json:"entry_filter"`
	Amount           int            `json:"amount"`
	AdditionalAction string         `json:"additional_action"`
}

func (r FeedsRequest) entryFilter() collection.EntryFilter {
	if r.EntryFilter == "Unread" {
		return collection.UnreadEntries
	}
	return collection.AllEntries
}

// ComFeedEntry is a single entry as returned from /api/feeds.
type ComFeedEntry struct {
	FeedURL string          `json:"feed_url"`
	Key     entrykey.Key    `json:"key"`
	Title   string          `json:"title"`
	Link    string          `json:"link"`
	PubDate string          `json:"pub_date"`
	Read    bool            `json:"read"`
}

// FeedsResponse is the response of POST /api/feeds.
type FeedsResponse struct {
	FeedEntries     []ComFeedEntry         `json:"feed_entries"`
	TotalAvailable  int                    `json:"total_available"`
	FeedsInfo       map[string]FeedInfoDTO `json:"feeds_info,omitempty"`
}

// SetEntryReadRequest is the body of POST /api/set_entry_read.
type SetEntryReadRequest struct {
	FeedURL  string       `json:"feed_url"`
	EntryKey entrykey.Key `json:"entry_key"`
	Read     bool         `json:"read"`
}

// SetFeedInfoRequest is the body of POST /api/set_feed_info.
type SetFeedInfoRequest struct {
	FeedURL string      `json:"feed_url"`
	Info    FeedInfoDTO `json:"info"`
}
