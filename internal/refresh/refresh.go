// Package refresh orchestrates fetching feeds and merging the results back
// into the registry, for both a single user's on-demand refresh and the
// background sweep over every user.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"feedkeep/backend/internal/collection"
	"feedkeep/backend/internal/feedfetch"
	"feedkeep/backend/internal/registry"
	"feedkeep/backend/pkg/logger"
)

// userFetchTimeout bounds a per-user, on-demand refresh's batch fetch.
const userFetchTimeout = 5 * time.Second

// backgroundFetchTimeout bounds the background sweep's batch fetch. It is
// independent of the scheduler's own outer per-tick timeout, which only
// guards against a sweep running past the next scheduled tick.
const backgroundFetchTimeout = 20 * time.Second

// Pipeline ties a registry to a fetcher and tracks whether a background
// sweep (RefreshAll) is currently in flight, so at most one sweep runs at a
// time. Per-user refreshes (RefreshUser) are not tracked and may run
// alongside a sweep.
type Pipeline struct {
	registry *registry.Registry
	fetcher  *feedfetch.Fetcher

	mu              sync.Mutex
	isRefreshing    bool
	lastRefreshedAt time.Time
}

// New returns a Pipeline operating on reg using fetcher to retrieve feeds.
func New(reg *registry.Registry, fetcher *feedfetch.Fetcher) *Pipeline {
	return &Pipeline{registry: reg, fetcher: fetcher}
}

// Status is a point-in-time snapshot of the pipeline's activity.
type Status struct {
	IsRefreshing    bool
	LastRefreshedAt time.Time
}

// GetStatus returns the pipeline's current status.
func (p *Pipeline) GetStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{IsRefreshing: p.isRefreshing, LastRefreshedAt: p.lastRefreshedAt}
}

func (p *Pipeline) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isRefreshing {
		return false
	}
	p.isRefreshing = true
	return true
}

func (p *Pipeline) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isRefreshing = false
	p.lastRefreshedAt = time.Now().UTC()
}

// RefreshUser refreshes every feed in the given user's collection. It
// implements the §4.6-A discipline: snapshot URLs under a read lock,
// release it, fetch with no lock held, then re-acquire under a write lock
// to merge. It reports whether the user existed.
func (p *Pipeline) RefreshUser(ctx context.Context, id registry.UserID) bool {
	urls := p.registry.URLsFor(id)
	if urls == nil {
		return false
	}

	results := p.fetcher.FetchMany(ctx, urls, userFetchTimeout)

	p.registry.Update(id, func(uc *collection.UserCollection) {
		applyResults(uc, results)
	})
	return true
}

// RefreshAll sweeps every user in the registry. It implements the §4.6-B
// discipline: union every collection's URLs under a single read lock, fetch
// that union exactly once, then distribute results per user under the write
// lock — so a URL shared by N subscribers is still fetched only once.
func (p *Pipeline) RefreshAll(ctx context.Context) {
	if !p.begin() {
		logger.Info("refresh already in progress, skipping sweep")
		return
	}
	defer p.end()

	urls := p.registry.AllURLs()
	results := p.fetcher.FetchMany(ctx, urls, backgroundFetchTimeout)

	for _, id := range p.registry.AllUserIDs() {
		if ctx.Err() != nil {
			return
		}
		p.registry.Update(id, func(uc *collection.UserCollection) {
			applyResults(uc, results)
		})
	}
}

func applyResults(uc *collection.UserCollection, results map[string]feedfetch.Result) {
	for url, feed := range uc.Feeds {
		result, ok := results[url]
		if !ok {
			feed.Merge(nil, errors.New("update requested but no result"))
			uc.Feeds[url] = feed
			continue
		}
		if result.Err != nil {
			feed.Merge(nil, result.Err)
		} else {
			if feed.Info.Name == "" {
				feed.Info.Name = result.Info.Name
			}
			feed.Merge(result.Entries, nil)
		}
		uc.Feeds[url] = feed
	}
}
