// Package orchestrator composes feeds, scraping, the pending queue, extraction
// and promotion sinks into the operations exposed by the CLI and HTTP API.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"newsdesk/apperr"
	"newsdesk/deduplication"
	"newsdesk/logging"
	"newsdesk/pending"
	"newsdesk/sink"
	"newsdesk/types"

	"go.uber.org/zap"
)

// Collector produces filtered feed candidates.
type Collector interface {
	Collect(ctx context.Context, sources []types.FeedSource, days int) []types.CandidateItem
}

// PageScraper scrapes a single URL.
type PageScraper interface {
	Scrape(ctx context.Context, rawURL string) (types.ScrapedDocument, error)
}

// Extractor turns text into a structured record.
type Extractor interface {
	Extract(ctx context.Context, text string, knownBrands []string) (types.ExtractedNewsData, error)
}

// BrandSource supplies the live brand vocabulary.
type BrandSource interface {
	Load(ctx context.Context) []string
}

// Publisher delivers promoted records.
type Publisher interface {
	Publish(ctx context.Context, evt sink.Event) error
}

// Deps are the collaborators of a Pipeline. Extractor and Publisher may be nil.
type Deps struct {
	Collector Collector
	Scraper   PageScraper
	Store     *pending.Store
	Dedup     *deduplication.Deduplicator
	Extractor Extractor
	Brands    BrandSource
	Publisher Publisher
	Sources   []types.FeedSource
	Days      int
}

// Pipeline runs ingestion, review and promotion.
type Pipeline struct {
	Deps
	log *zap.Logger
	now func() time.Time
}

// Report summarizes one ingestion run.
type Report struct {
	deduplication.Stats
	Stored int           `json:"stored"`
	Failed int           `json:"failed"`
	Took   time.Duration `json:"took"`
}

// ErrExtractionDisabled is returned when no model backend is configured.
var ErrExtractionDisabled = errors.New("extraction backend not configured")

func New(d Deps, log *zap.Logger) *Pipeline {
	if d.Dedup == nil {
		d.Dedup = deduplication.NewDeduplicator(nil, log)
	}
	return &Pipeline{Deps: d, log: logging.OrNop(log), now: time.Now}
}

// Preview aggregates the configured feeds without touching the queue.
// days <= 0 uses the configured window.
func (p *Pipeline) Preview(ctx context.Context, days int) []types.CandidateItem {
	if days <= 0 {
		days = p.Days
	}
	return p.Collector.Collect(ctx, p.Sources, days)
}

// RunOnce fetches feeds and writes every new candidate into the pending
// queue, one record per candidate. Per-item write failures are logged.
func (p *Pipeline) RunOnce(ctx context.Context) (Report, error) {
	start := time.Now()
	if !p.Store.Available() {
		return Report{}, apperr.New(apperr.KindStoreUnavailable, "ingest", "", apperr.ErrNotConfigured)
	}

	candidates := p.Collector.Collect(ctx, p.Sources, p.Days)
	existing := p.Store.List(ctx)
	fresh, stats := p.Dedup.Merge(ctx, candidates, existing)

	rep := Report{Stats: stats}
	for _, c := range fresh {
		if err := p.Store.Put(ctx, c.Entry()); err != nil {
			p.log.Warn("failed to queue candidate", zap.String("id", c.ID), zap.String("url", c.Link), zap.Error(err))
			rep.Failed++
			continue
		}
		rep.Stored++
	}
	rep.Took = time.Since(start)

	p.log.Info("ingestion complete",
		zap.Int("candidates", stats.Candidates),
		zap.Int("new", stats.New),
		zap.Int("already_pending", stats.Pending),
		zap.Int("batch_duplicates", stats.Batch),
		zap.Int("remembered", stats.Remembered),
		zap.Int("stored", rep.Stored),
		zap.Int("failed", rep.Failed),
		zap.Duration("took", rep.Took))
	return rep, nil
}

// Scrape fetches one page and queues it.
func (p *Pipeline) Scrape(ctx context.Context, rawURL string) (types.ScrapedDocument, error) {
	if !p.Store.Available() {
		return types.ScrapedDocument{}, apperr.New(apperr.KindStoreUnavailable, "scrape", rawURL, apperr.ErrNotConfigured)
	}
	doc, err := p.Scraper.Scrape(ctx, rawURL)
	if err != nil {
		return types.ScrapedDocument{}, err
	}
	if err := p.Store.Put(ctx, doc.Entry()); err != nil {
		return types.ScrapedDocument{}, err
	}
	p.log.Info("page queued", zap.String("id", doc.ID), zap.String("url", doc.URL), zap.Int("chars", len([]rune(doc.Text))))
	return doc, nil
}

// Pending lists the queue newest first.
func (p *Pipeline) Pending(ctx context.Context) []types.PendingEntry {
	return p.Store.List(ctx)
}

// Dismiss deletes an entry and remembers its link so later runs skip it.
func (p *Pipeline) Dismiss(ctx context.Context, id string) error {
	e, err := p.Store.Get(ctx, id)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	if err := p.Store.Delete(ctx, id); err != nil {
		return err
	}
	if e.URL != "" {
		p.remember(ctx, e.URL)
	}
	p.log.Info("entry dismissed", zap.String("id", id))
	return nil
}

// Extract runs extraction against the current brand vocabulary.
func (p *Pipeline) Extract(ctx context.Context, text string) (types.ExtractedNewsData, error) {
	if p.Extractor == nil {
		return types.ExtractedNewsData{}, apperr.New(apperr.KindUpstreamModel, "extract", "", ErrExtractionDisabled)
	}
	var known []string
	if p.Brands != nil {
		known = p.Brands.Load(ctx)
	}
	return p.Extractor.Extract(ctx, text, known)
}

// Promote extracts a pending entry, publishes the result and removes the
// entry. The entry stays queued if extraction or publishing fails.
func (p *Pipeline) Promote(ctx context.Context, id string) (types.ExtractedNewsData, error) {
	e, err := p.Store.Get(ctx, id)
	if err != nil {
		return types.ExtractedNewsData{}, err
	}
	rec, err := p.Extract(ctx, e.Body())
	if err != nil {
		return types.ExtractedNewsData{}, err
	}
	if rec.URL == "" {
		rec.URL = e.URL
	}
	if !e.PublishedAt.IsZero() {
		rec.Date = e.PublishedAt.Format("2006-01-02")
	}

	if p.Publisher != nil {
		evt := sink.Event{ID: e.ID, Kind: e.Kind, Source: e.Source, PromotedAt: p.now().UTC(), News: rec}
		if err := p.Publisher.Publish(ctx, evt); err != nil {
			return types.ExtractedNewsData{}, fmt.Errorf("publish %s: %w", id, err)
		}
	}
	if err := p.Store.Delete(ctx, id); err != nil {
		p.log.Warn("promoted entry could not be removed", zap.String("id", id), zap.Error(err))
	}
	p.remember(ctx, e.URL)
	p.log.Info("entry promoted", zap.String("id", id), zap.String("brand", rec.Brand), zap.String("type", string(rec.Type)))
	return rec, nil
}

func (p *Pipeline) remember(ctx context.Context, link string) {
	if err := p.Dedup.Remember(ctx, link); err != nil {
		p.log.Warn("failed to remember link", zap.String("url", link), zap.Error(err))
	}
}

// CheckLink reports whether link is already pending or remembered.
func (p *Pipeline) CheckLink(ctx context.Context, link string) deduplication.DeduplicationResult {
	idx := deduplication.NewIndex(p.Store.List(ctx))
	c := types.CandidateItem{ID: types.GenerateID(deduplication.NormalizeURL(link)), Link: link}
	return p.Dedup.Check(ctx, idx, c)
}
