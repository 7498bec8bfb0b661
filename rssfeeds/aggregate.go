package rssfeeds

import (
	"context"
	"time"

	"newsdesk/deduplication"
	"newsdesk/logging"
	"newsdesk/types"

	"go.uber.org/zap"
)

// Aggregator runs fetch and filter over a source list and emits candidates.
type Aggregator struct {
	fetcher     *Fetcher
	filter      *Filter
	maxPerBatch int
	now         func() time.Time
	log         *zap.Logger
}

// NewAggregator wires a fetcher and a filter together. The batch limit comes
// from the fetcher's feed settings.
func NewAggregator(fetcher *Fetcher, filter *Filter, log *zap.Logger) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		filter:      filter,
		maxPerBatch: fetcher.maxPerBatch,
		now:         time.Now,
		log:         logging.OrNop(log),
	}
}

// Collect fetches all sources, applies the keyword policy and a days window
// (cutoff computed once for the whole batch) and converts survivors into
// candidates newest first. The batch limit counts kept items only.
// Candidate ids derive from the normalized link.
func (a *Aggregator) Collect(ctx context.Context, sources []types.FeedSource, days int) []types.CandidateItem {
	cutoff := Cutoff(a.now(), days)
	items := a.fetcher.FetchAll(ctx, sources)
	kept := a.filter.Apply(items, cutoff)
	if a.maxPerBatch > 0 && len(kept) > a.maxPerBatch {
		kept = kept[:a.maxPerBatch]
	}

	a.log.Info("feeds aggregated",
		zap.Int("sources", len(sources)),
		zap.Int("fetched", len(items)),
		zap.Int("kept", len(kept)),
		zap.Time("cutoff", cutoff))

	out := make([]types.CandidateItem, 0, len(kept))
	for _, it := range kept {
		out = append(out, ToCandidate(it))
	}
	return out
}

// ToCandidate converts a filtered item into a pending candidate.
func ToCandidate(it Item) types.CandidateItem {
	return types.CandidateItem{
		ID:          types.GenerateID(deduplication.NormalizeURL(it.Link)),
		Title:       it.Title,
		Link:        it.Link,
		PublishedAt: it.PublishedAt,
		SourceName:  it.Source.Name,
		Snippet:     it.Snippet,
		ImageURL:    it.ImageURL,
		Status:      types.StatusPending,
	}
}
