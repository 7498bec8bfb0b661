package deduplication

import (
	"context"
	"time"

	"newsdesk/logging"
	"newsdesk/types"

	"go.uber.org/zap"
)

// Memory is a long-lived record of links that were already handled.
type Memory interface {
	Exists(ctx context.Context, hash string) (bool, error)
	Add(ctx context.Context, hash string) error
}

// Duplicate reasons.
const (
	ReasonPending    = "pending"
	ReasonBatch      = "batch"
	ReasonRemembered = "remembered"
)

// DeduplicationResult contains the result of a deduplication check.
type DeduplicationResult struct {
	IsDuplicate bool      `json:"is_duplicate"`
	Reason      string    `json:"reason,omitempty"`
	MatchingID  string    `json:"matching_id,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
}

// Stats summarizes one merge.
type Stats struct {
	Candidates int `json:"candidates"`
	New        int `json:"new"`
	Pending    int `json:"pending"`
	Batch      int `json:"batch"`
	Remembered int `json:"remembered"`
}

// Deduplicator decides which candidates are new, keyed by normalized link.
type Deduplicator struct {
	memory Memory
	log    *zap.Logger
}

// NewDeduplicator builds a Deduplicator. memory may be nil.
func NewDeduplicator(memory Memory, log *zap.Logger) *Deduplicator {
	return &Deduplicator{memory: memory, log: logging.OrNop(log)}
}

// Index is the set of normalized links already present in the pending queue.
type Index struct {
	links map[string]string // normalized link -> entry id
	ids   map[string]struct{}
}

// NewIndex indexes existing pending entries.
func NewIndex(entries []types.PendingEntry) *Index {
	idx := &Index{
		links: make(map[string]string, len(entries)),
		ids:   make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		idx.ids[e.ID] = struct{}{}
		if n := NormalizeURL(e.URL); n != "" {
			idx.links[n] = e.ID
		}
	}
	return idx
}

// Lookup returns the id of the pending entry holding link, if any.
func (i *Index) Lookup(link string) (string, bool) {
	id, ok := i.links[NormalizeURL(link)]
	return id, ok
}

func (i *Index) add(id, link string) {
	i.ids[id] = struct{}{}
	i.links[NormalizeURL(link)] = id
}

// Check classifies a single candidate against the index and memory.
func (d *Deduplicator) Check(ctx context.Context, idx *Index, c types.CandidateItem) DeduplicationResult {
	res := DeduplicationResult{CheckedAt: time.Now()}
	if id, ok := idx.Lookup(c.Link); ok {
		res.IsDuplicate, res.Reason, res.MatchingID = true, ReasonPending, id
		return res
	}
	if _, ok := idx.ids[c.ID]; ok {
		res.IsDuplicate, res.Reason, res.MatchingID = true, ReasonPending, c.ID
		return res
	}
	if d.memory != nil {
		seen, err := d.memory.Exists(ctx, LinkHash(c.Link))
		if err != nil {
			d.log.Warn("link memory check failed", zap.String("url", c.Link), zap.Error(err))
		} else if seen {
			res.IsDuplicate, res.Reason = true, ReasonRemembered
		}
	}
	return res
}

// Merge returns the candidates that are not already pending, not remembered,
// and not repeated earlier in the same batch. Order is preserved.
func (d *Deduplicator) Merge(ctx context.Context, candidates []types.CandidateItem, existing []types.PendingEntry) ([]types.CandidateItem, Stats) {
	idx := NewIndex(existing)
	batch := make(map[string]struct{}, len(candidates))
	stats := Stats{Candidates: len(candidates)}

	fresh := make([]types.CandidateItem, 0, len(candidates))
	for _, c := range candidates {
		key := NormalizeURL(c.Link)
		if _, dup := batch[key]; dup {
			stats.Batch++
			continue
		}
		batch[key] = struct{}{}

		res := d.Check(ctx, idx, c)
		if res.IsDuplicate {
			switch res.Reason {
			case ReasonRemembered:
				stats.Remembered++
			default:
				stats.Pending++
			}
			continue
		}
		idx.add(c.ID, c.Link)
		fresh = append(fresh, c)
	}
	stats.New = len(fresh)
	return fresh, stats
}

// Remember records a link so future merges skip it even after its pending
// entry is gone. No-op without memory.
func (d *Deduplicator) Remember(ctx context.Context, link string) error {
	if d.memory == nil || link == "" {
		return nil
	}
	return d.memory.Add(ctx, LinkHash(link))
}
