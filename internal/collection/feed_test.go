package collection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeInsertsNewAndPreservesExisting(t *testing.T) {
	f := NewFeed(FeedInfo{Name: "Example"})
	existing := Entry{Title: "Old", Link: "https://example.com/old", Read: true}
	f.Entries[existing.Key()] = existing

	incoming := Entry{Title: "Old", Link: "https://example.com/old", Read: false}
	fresh := Entry{Title: "New", Link: "https://example.com/new"}

	f.Merge([]FetchedEntry{
		{Key: incoming.Key(), Entry: incoming},
		{Key: fresh.Key(), Entry: fresh},
	}, nil)

	require.Len(t, f.Entries, 2)
	assert.True(t, f.Entries[existing.Key()].Read, "existing read flag must not be overwritten")
	assert.True(t, f.Info.LastUpdateResult.OK)
}

func TestMergeRecordsFetchError(t *testing.T) {
	f := NewFeed(FeedInfo{Name: "Example"})
	f.Merge(nil, errors.New("boom"))

	assert.False(t, f.Info.LastUpdateResult.OK)
	assert.Equal(t, "boom", f.Info.LastUpdateResult.Message)
	assert.Empty(t, f.Entries)
}

func TestSetReadUnknownKey(t *testing.T) {
	f := NewFeed(FeedInfo{})
	other := Entry{Title: "x"}
	assert.False(t, f.SetRead(other.Key(), true))
}

func TestLessOrdersNewestFirst(t *testing.T) {
	older := Entry{Title: "A", PubDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := Entry{Title: "B", PubDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.True(t, Less(newer, older))
	assert.False(t, Less(older, newer))
}

func TestLessTieBreaksOnTitleThenLink(t *testing.T) {
	same := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Entry{Title: "A", Link: "z", PubDate: same}
	b := Entry{Title: "B", Link: "a", PubDate: same}
	assert.True(t, Less(a, b))
}

func TestFeedInfoHasTag(t *testing.T) {
	info := FeedInfo{Tags: []string{"news", "tech"}}
	assert.True(t, info.HasTag("tech"))
	assert.False(t, info.HasTag("sports"))
}
