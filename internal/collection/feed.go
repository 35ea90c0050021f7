// Package collection holds the per-user feed data model: a single feed's
// entries and metadata, a user's whole collection of feeds, and the view
// pipeline used to answer "show me the entries for this filter".
package collection

import (
	"sort"
	"time"

	"feedkeep/backend/internal/entrykey"
)

// MissingDate is substituted for entries whose source feed carries no
// publication date of its own.
var MissingDate = time.Date(1900, 1, 1, 1, 1, 1, 0, time.UTC)

// UpdateResult records the outcome of the most recent refresh attempt for a
// feed. Only the latest attempt is kept; it does not accumulate history.
type UpdateResult struct {
	OK      bool   `yaml:"ok" json:"ok"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// FeedInfo is the user-editable and system-maintained metadata attached to
// a feed, independent of its entries.
type FeedInfo struct {
	Name             string       `yaml:"name" json:"name"`
	Tags             []string     `yaml:"tags" json:"tags"`
	LastUpdateResult UpdateResult `yaml:"last_update_result" json:"last_update_result"`
}

// HasTag reports whether tag is one of info's tags.
func (info FeedInfo) HasTag(tag string) bool {
	for _, t := range info.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Entry is a single item from a feed.
type Entry struct {
	Title   string    `yaml:"title" json:"title"`
	Link    string    `yaml:"link" json:"link"`
	PubDate time.Time `yaml:"pub_date" json:"pub_date"`
	Read    bool      `yaml:"read" json:"read"`
}

// Key derives this entry's identity from its title and link.
func (e Entry) Key() entrykey.Key {
	return entrykey.Of(e.Title, e.Link)
}

// Less orders entries newest-first, then by title, then by link — the same
// tie-break chain the view pipeline truncates after sorting.
func Less(a, b Entry) bool {
	if !a.PubDate.Equal(b.PubDate) {
		return a.PubDate.After(b.PubDate)
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.Link < b.Link
}

// Feed is a single subscribed-to feed, keyed by entry identity so repeated
// refreshes can insert-if-absent without disturbing entries already read.
type Feed struct {
	Info    FeedInfo                     `yaml:"info" json:"info"`
	Entries map[entrykey.Key]Entry `yaml:"entries" json:"entries"`
}

// NewFeed returns an empty feed with the given metadata.
func NewFeed(info FeedInfo) Feed {
	return Feed{Info: info, Entries: map[entrykey.Key]Entry{}}
}

// FetchedEntry is what a fetch produces for a single item, before it has
// been reconciled with what is already stored.
type FetchedEntry struct {
	Key   entrykey.Key
	Entry Entry
}

// Merge folds newly fetched entries into the feed. Existing entries
// (including their Read flag) are left untouched; only genuinely new keys
// are inserted. This is what makes refresh idempotent and safe to repeat.
func (f *Feed) Merge(fetched []FetchedEntry, fetchErr error) {
	if fetchErr != nil {
		f.Info.LastUpdateResult = UpdateResult{OK: false, Message: fetchErr.Error()}
		return
	}
	for _, fe := range fetched {
		if _, exists := f.Entries[fe.Key]; !exists {
			f.Entries[fe.Key] = fe.Entry
		}
	}
	f.Info.LastUpdateResult = UpdateResult{OK: true}
}

// SetRead sets the Read flag of the entry with the given key. It reports
// whether the entry existed.
func (f *Feed) SetRead(key entrykey.Key, read bool) bool {
	entry, ok := f.Entries[key]
	if !ok {
		return false
	}
	entry.Read = read
	f.Entries[key] = entry
	return true
}

// sortedKeys returns the feed's entry keys in deterministic (byte-wise)
// order. Registry.ContentHash and the snapshot code do not call it; they
// order entries on their own.
func (f Feed) sortedKeys() []entrykey.Key {
	keys := make([]entrykey.Key, 0, len(f.Entries))
	for k := range f.Entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return string(keys[i][:]) < string(keys[j][:])
	})
	return keys
}
