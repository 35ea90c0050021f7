package collection

import (
	"feedkeep/backend/internal/entrykey"
	"feedkeep/backend/internal/urlutil"
)

// UserCollection is the set of feeds a single user has subscribed to,
// keyed by feed URL.
type UserCollection struct {
	Feeds map[string]Feed `yaml:"feeds" json:"feeds"`
}

// NewUserCollection returns an empty collection.
func NewUserCollection() UserCollection {
	return UserCollection{Feeds: map[string]Feed{}}
}

// AddFeed adds a new, empty feed at url. It is a no-op if the feed already
// exists, so that re-adding a known URL never discards its entries. The URL
// is stripped of any fragment first, so a link copied with a "#section"
// anchor doesn't create a duplicate subscription.
func (uc *UserCollection) AddFeed(url string, info FeedInfo) (added bool) {
	url = urlutil.StripFragment(url)
	if uc.Feeds == nil {
		uc.Feeds = map[string]Feed{}
	}
	if _, exists := uc.Feeds[url]; exists {
		return false
	}
	uc.Feeds[url] = NewFeed(info)
	return true
}

// RemoveFeed deletes the feed at url, reporting whether it existed.
func (uc *UserCollection) RemoveFeed(url string) bool {
	url = urlutil.StripFragment(url)
	if _, exists := uc.Feeds[url]; !exists {
		return false
	}
	delete(uc.Feeds, url)
	return true
}

// SetFeedInfo replaces the metadata (name, tags) of an existing feed,
// leaving its entries untouched. It reports whether the feed existed.
func (uc *UserCollection) SetFeedInfo(url string, info FeedInfo) bool {
	url = urlutil.StripFragment(url)
	feed, ok := uc.Feeds[url]
	if !ok {
		return false
	}
	lastResult := feed.Info.LastUpdateResult
	feed.Info = info
	feed.Info.LastUpdateResult = lastResult
	uc.Feeds[url] = feed
	return true
}

// SetEntryRead marks an entry read or unread. It reports whether the feed
// and entry existed.
func (uc *UserCollection) SetEntryRead(url string, key entrykey.Key, read bool) bool {
	url = urlutil.StripFragment(url)
	feed, ok := uc.Feeds[url]
	if !ok {
		return false
	}
	ok = feed.SetRead(key, read)
	uc.Feeds[url] = feed
	return ok
}

// URLs returns the feed URLs in this collection, in no particular order.
func (uc UserCollection) URLs() []string {
	urls := make([]string, 0, len(uc.Feeds))
	for url := range uc.Feeds {
		urls = append(urls, url)
	}
	return urls
}

// FeedInfos returns a snapshot of every feed's metadata, keyed by URL.
func (uc UserCollection) FeedInfos() map[string]FeedInfo {
	out := make(map[string]FeedInfo, len(uc.Feeds))
	for url, feed := range uc.Feeds {
		out[url] = feed.Info
	}
	return out
}
