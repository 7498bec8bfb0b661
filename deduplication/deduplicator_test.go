package deduplication

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsdesk/types"
)

type fakeMemory struct {
	hashes map[string]bool
	err    error
}

func newFakeMemory() *fakeMemory { return &fakeMemory{hashes: make(map[string]bool)} }

func (f *fakeMemory) Exists(_ context.Context, hash string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.hashes[hash], nil
}

func (f *fakeMemory) Add(_ context.Context, hash string) error {
	f.hashes[hash] = true
	return nil
}

func candidate(link string) types.CandidateItem {
	return types.CandidateItem{
		ID:          types.GenerateID(NormalizeURL(link)),
		Title:       "t " + link,
		Link:        link,
		PublishedAt: time.Now(),
		Status:      types.StatusPending,
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	d := NewDeduplicator(nil, nil)
	ctx := context.Background()
	batch := []types.CandidateItem{
		candidate("https://news.test/a"),
		candidate("https://news.test/b"),
		candidate("https://news.test/a?utm_source=rss"),
	}

	fresh, stats := d.Merge(ctx, batch, nil)
	if len(fresh) != 2 || stats.Batch != 1 {
		t.Fatalf("first merge: fresh=%d stats=%+v", len(fresh), stats)
	}

	var stored []types.PendingEntry
	for _, c := range fresh {
		stored = append(stored, c.Entry())
	}

	again, stats := d.Merge(ctx, batch, stored)
	if len(again) != 0 {
		t.Fatalf("second merge created duplicates: %+v", again)
	}
	if stats.Pending != 2 {
		t.Fatalf("expected 2 pending duplicates, got %+v", stats)
	}
}

func TestMergeSkipsRememberedLinks(t *testing.T) {
	mem := newFakeMemory()
	d := NewDeduplicator(mem, nil)
	ctx := context.Background()

	if err := d.Remember(ctx, "https://news.test/dismissed/"); err != nil {
		t.Fatalf("Remember error: %v", err)
	}
	fresh, stats := d.Merge(ctx, []types.CandidateItem{
		candidate("https://news.test/dismissed"),
		candidate("https://news.test/new"),
	}, nil)
	if len(fresh) != 1 || fresh[0].Link != "https://news.test/new" || stats.Remembered != 1 {
		t.Fatalf("fresh=%+v stats=%+v", fresh, stats)
	}
}

func TestMemoryFailureDoesNotDropCandidates(t *testing.T) {
	mem := newFakeMemory()
	mem.err = errors.New("redis down")
	d := NewDeduplicator(mem, nil)

	fresh, _ := d.Merge(context.Background(), []types.CandidateItem{candidate("https://news.test/a")}, nil)
	if len(fresh) != 1 {
		t.Fatalf("expected candidate to pass when memory is unavailable")
	}
}

func TestCheckMatchesPendingByID(t *testing.T) {
	d := NewDeduplicator(nil, nil)
	c := candidate("https://news.test/a")
	idx := NewIndex([]types.PendingEntry{{ID: c.ID, URL: ""}})

	res := d.Check(context.Background(), idx, c)
	if !res.IsDuplicate || res.MatchingID != c.ID || res.Reason != ReasonPending {
		t.Fatalf("unexpected result: %+v", res)
	}
}
