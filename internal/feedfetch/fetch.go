// Package feedfetch fetches and parses RSS/Atom feeds. It is stateless
// between calls: all concurrency control and rate limiting it applies is
// scoped to a single FetchMany invocation.
package feedfetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"feedkeep/backend/internal/collection"
	"feedkeep/backend/pkg/logger"
	"feedkeep/backend/pkg/network"
	"feedkeep/backend/pkg/sanitizer"
)

// MaxConcurrentFetch bounds how many feeds are fetched in parallel across a
// single FetchMany call.
const MaxConcurrentFetch = 8

// PerHostInterval is the minimum spacing between requests to the same host
// within a single batch, to avoid hammering one server just because a user
// subscribed to several feeds on it.
const PerHostInterval = 500 * time.Millisecond

// FetchTimeout bounds a single feed fetch.
const FetchTimeout = 15 * time.Second

// Stage identifies which part of a fetch failed.
type Stage string

const (
	StageConnect Stage = "connect"
	StageParse   Stage = "parse"
)

// Error wraps a fetch failure with the URL and stage it occurred at.
type Error struct {
	URL   string
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("feedfetch: %s: %s: %v", e.Stage, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result is the outcome of fetching a single feed: either Info and Entries
// are populated, or Err explains why not.
type Result struct {
	URL     string
	Info    collection.FeedInfo
	Entries []collection.FetchedEntry
	Err     error
}

// Fetcher fetches feeds using a configured HTTP transport.
type Fetcher struct {
	clientFactory *network.ClientFactory
	parser        *gofeed.Parser
}

// New returns a Fetcher using factory to build its HTTP client. If factory
// is nil, a factory with no proxy is used.
func New(factory *network.ClientFactory) *Fetcher {
	if factory == nil {
		factory = network.NewClientFactory(nil)
	}
	return &Fetcher{clientFactory: factory, parser: gofeed.NewParser()}
}

// FetchOne retrieves and parses a single feed, bounded by timeout (covering
// connect, transfer, and parse).
func (f *Fetcher) FetchOne(ctx context.Context, feedURL string, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := f.clientFactory.NewHTTPClient(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return Result{URL: feedURL, Err: &Error{URL: feedURL, Stage: StageConnect, Err: err}}
	}
	req.Header.Set("User-Agent", "feedkeep/1.0 (+feed aggregator)")

	resp, err := client.Do(req)
	if err != nil {
		return Result{URL: feedURL, Err: &Error{URL: feedURL, Stage: StageConnect, Err: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		return Result{URL: feedURL, Err: &Error{URL: feedURL, Stage: StageConnect, Err: err}}
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return Result{URL: feedURL, Err: &Error{URL: feedURL, Stage: StageParse, Err: err}}
	}

	info := collection.FeedInfo{Name: parsed.Title}
	entries := make([]collection.FetchedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry := entryFromItem(item)
		entries = append(entries, collection.FetchedEntry{Key: entry.Key(), Entry: entry})
	}

	return Result{URL: feedURL, Info: info, Entries: entries}
}

func entryFromItem(item *gofeed.Item) collection.Entry {
	title := "No title"
	if item.Title != "" {
		title = item.Title
	}
	title = sanitizer.Title(title)

	link := item.Link

	pubDate := collection.MissingDate
	switch {
	case item.PublishedParsed != nil:
		pubDate = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		pubDate = item.UpdatedParsed.UTC()
	}

	return collection.Entry{Title: title, Link: link, PubDate: pubDate}
}

// Probe reports whether url points to a parseable feed, without storing
// anything. It is the fetcher half of the "is this URL an RSS feed" check.
func (f *Fetcher) Probe(ctx context.Context, url string) (ok bool, info collection.FeedInfo) {
	result := f.FetchOne(ctx, url, FetchTimeout)
	if result.Err != nil {
		return false, collection.FeedInfo{}
	}
	return true, result.Info
}

// FetchMany fetches every URL concurrently, bounded by MaxConcurrentFetch
// overall, by a per-host rate limiter within this batch, and by timeout on
// each individual fetch. Results are returned keyed by URL; every input URL
// has a corresponding entry.
func (f *Fetcher) FetchMany(ctx context.Context, urls []string, timeout time.Duration) map[string]Result {
	results := make(map[string]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(MaxConcurrentFetch)
	hostLimiters := newHostLimiters()

	for _, u := range urls {
		u := u
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				results[u] = Result{URL: u, Err: &Error{URL: u, Stage: StageConnect, Err: err}}
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			host := network.ExtractHost(u)
			if limiter := hostLimiters.get(host); limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					mu.Lock()
					results[u] = Result{URL: u, Err: &Error{URL: u, Stage: StageConnect, Err: err}}
					mu.Unlock()
					return
				}
			}

			result := f.FetchOne(ctx, u, timeout)
			if result.Err != nil {
				logger.Warn("feed fetch failed", "url", u, "error", result.Err)
			}

			mu.Lock()
			results[u] = result
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

type hostLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newHostLimiters() *hostLimiters {
	return &hostLimiters{limiters: map[string]*rate.Limiter{}}
}

func (h *hostLimiters) get(host string) *rate.Limiter {
	if host == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(PerHostInterval), 1)
		h.limiters[host] = limiter
	}
	return limiter
}

