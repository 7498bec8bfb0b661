package rssfeeds

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"newsdesk/apperr"
	"newsdesk/config"
	"newsdesk/logging"
	"newsdesk/types"
	"newsdesk/webclient"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Item is a parsed feed entry tagged with the source it came from.
type Item struct {
	Source      types.FeedSource
	Title       string
	Link        string
	PublishedAt time.Time
	Snippet     string
	ImageURL    string
}

// Fetcher pulls RSS/Atom feeds in parallel.
type Fetcher struct {
	client       webclient.Client
	headers      map[string]string
	timeout      time.Duration
	maxPerSource int
	maxPerBatch  int
	datePolicy   string
	snippetChars int
	images       ImageResolver
	now          func() time.Time
	log          *zap.Logger
}

// NewFetcher builds a Fetcher from the shared HTTP settings and feed limits.
func NewFetcher(client webclient.Client, httpCfg config.HTTPConfig, feeds config.FeedsConfig, log *zap.Logger) *Fetcher {
	return &Fetcher{
		client:       client,
		headers:      httpCfg.Headers(),
		timeout:      httpCfg.FeedTimeout,
		maxPerSource: feeds.MaxItemsPerSource,
		maxPerBatch:  feeds.MaxItemsPerBatch,
		datePolicy:   feeds.DatePolicy,
		snippetChars: feeds.SnippetChars,
		now:          time.Now,
		log:          logging.OrNop(log),
	}
}

// FetchAll fetches every source concurrently. A failing source contributes no
// items and never cancels its siblings. The merged list is sorted newest first;
// only the per-source limit applies here.
func (f *Fetcher) FetchAll(ctx context.Context, sources []types.FeedSource) []Item {
	results := make([][]Item, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src types.FeedSource) {
			defer wg.Done()
			items, err := f.FetchSource(ctx, src)
			if err != nil {
				f.log.Warn("feed fetch failed",
					zap.String("source", src.Name),
					zap.String("url", src.URL),
					zap.String("kind", string(apperr.KindOf(err))),
					zap.Error(err))
				return
			}
			f.log.Debug("feed fetched", zap.String("source", src.Name), zap.Int("items", len(items)))
			results[i] = items
		}(i, src)
	}
	wg.Wait()

	var merged []Item
	for _, items := range results {
		merged = append(merged, items...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	return merged
}

// FetchSource fetches and parses a single feed.
func (f *Fetcher) FetchSource(ctx context.Context, src types.FeedSource) ([]Item, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	resp, err := f.client.Get(ctx, src.URL, f.headers)
	if err != nil {
		if apperr.IsTimeout(err) {
			err = fmt.Errorf("%w after %s: %v", apperr.ErrTimeout, f.timeout, err)
		}
		return nil, apperr.New(apperr.KindSourceUnavailable, "fetch feed", src.URL, err)
	}
	if !resp.OK() {
		return nil, apperr.New(apperr.KindSourceUnavailable, "fetch feed", src.URL,
			fmt.Errorf("status %d: %s", resp.StatusCode, resp.Snippet()))
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, apperr.New(apperr.KindUnparsableContent, "parse feed", src.URL, err)
	}

	raw := feed.Items
	if f.maxPerSource > 0 && len(raw) > f.maxPerSource {
		raw = raw[:f.maxPerSource]
	}
	items := make([]Item, 0, len(raw))
	for _, it := range raw {
		if item, ok := f.convert(src, it); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *Fetcher) convert(src types.FeedSource, it *gofeed.Item) (Item, bool) {
	if it == nil {
		return Item{}, false
	}
	title := collapseWhitespace(it.Title)
	link := strings.TrimSpace(it.Link)
	if link == "" && strings.HasPrefix(it.GUID, "http") {
		link = strings.TrimSpace(it.GUID)
	}
	if title == "" || link == "" {
		return Item{}, false
	}

	published := publishedAt(it)
	if published.IsZero() {
		if f.datePolicy != config.DatePolicyNow {
			f.log.Debug("dropping item without a usable date",
				zap.String("source", src.Name), zap.String("url", link))
			return Item{}, false
		}
		published = f.now()
	}

	desc := it.Description
	if strings.TrimSpace(desc) == "" {
		desc = it.Content
	}

	return Item{
		Source:      src,
		Title:       title,
		Link:        link,
		PublishedAt: published,
		Snippet:     truncate(stripHTML(desc), f.snippetChars),
		ImageURL:    f.images.Resolve(it),
	}, true
}

// publishedAt prefers the parser's own dates and retries the raw strings
// with a tolerant parser. Zero means no usable date.
func publishedAt(it *gofeed.Item) time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return *it.UpdatedParsed
	}
	for _, raw := range []string{it.Published, it.Updated} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
