package collection

import (
	"sort"

	"feedkeep/backend/internal/entrykey"
)

// FeedFilter selects which feeds in a collection contribute entries to a
// view.
type FeedFilter struct {
	// Kind is one of "all", "tag", or "single".
	Kind string
	Tag  string
	URL  string
}

// AllFeeds returns a filter matching every feed in the collection.
func AllFeeds() FeedFilter { return FeedFilter{Kind: "all"} }

// FeedsWithTag returns a filter matching feeds carrying the given tag.
func FeedsWithTag(tag string) FeedFilter { return FeedFilter{Kind: "tag", Tag: tag} }

// SingleFeed returns a filter matching only the feed at url.
func SingleFeed(url string) FeedFilter { return FeedFilter{Kind: "single", URL: url} }

func (f FeedFilter) matches(url string, info FeedInfo) bool {
	switch f.Kind {
	case "tag":
		return info.HasTag(f.Tag)
	case "single":
		return url == f.URL
	default:
		return true
	}
}

// EntryFilter selects which entries within a matched feed are included.
type EntryFilter int

const (
	// AllEntries includes every entry regardless of read state.
	AllEntries EntryFilter = iota
	// UnreadEntries includes only entries not yet marked read.
	UnreadEntries
)

func (f EntryFilter) apply(e Entry) bool {
	if f == UnreadEntries {
		return !e.Read
	}
	return true
}

// ViewEntry is a single entry as returned from a collection view, carrying
// the URL of the feed it belongs to alongside the entry itself.
type ViewEntry struct {
	URL   string
	Key   string
	Entry Entry
}

// View filters, flattens, sorts, and truncates a user's feeds into at most
// amount entries, returning the page plus the total number of entries that
// matched the filters before truncation.
func (uc UserCollection) View(amount int, feedFilter FeedFilter, entryFilter EntryFilter) ([]ViewEntry, int) {
	var entries []ViewEntry

	for url, feed := range uc.Feeds {
		if !feedFilter.matches(url, feed.Info) {
			continue
		}
		for key, entry := range feed.Entries {
			if !entryFilter.apply(entry) {
				continue
			}
			entries = append(entries, ViewEntry{URL: url, Key: key.String(), Entry: entry})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !Less(entries[i].Entry, entries[j].Entry) && !Less(entries[j].Entry, entries[i].Entry) {
			if entries[i].Entry.Read != entries[j].Entry.Read {
				return !entries[i].Entry.Read
			}
			ki, _ := entrykey.Parse(entries[i].Key)
			kj, _ := entrykey.Parse(entries[j].Key)
			return string(ki[:]) < string(kj[:])
		}
		return Less(entries[i].Entry, entries[j].Entry)
	})

	total := len(entries)
	if amount >= 0 && amount < len(entries) {
		entries = entries[:amount]
	}
	return entries, total
}
