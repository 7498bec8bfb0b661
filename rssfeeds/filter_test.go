package rssfeeds

import (
	"testing"
	"time"

	"newsdesk/types"
)

var (
	aggregator = types.FeedSource{Name: "Agg", Type: types.SourceAggregator}
	direct     = types.FeedSource{Name: "Direct", Type: types.SourceDirect}
)

func TestFilterKeywordPolicy(t *testing.T) {
	f := NewFilter([]string{"car", "ev", "suv"})
	cases := []struct {
		name  string
		src   types.FeedSource
		title string
		want  bool
	}{
		{"aggregator without keyword", aggregator, "Dubai weather forecast for Eid", false},
		{"aggregator with keywords", aggregator, "New EV SUV launched in Dubai", true},
		{"plural", aggregator, "Used cars prices drop", true},
		{"es plural", aggregator, "Three new SUVes arrive", true},
		{"substring is not a word", aggregator, "Oscar winner visits Dubai", false},
		{"direct passes", direct, "Dubai weather forecast for Eid", true},
		{"unknown type is filtered", types.FeedSource{Type: "mixed"}, "Weather update", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := f.Allow(c.src, c.title, ""); got != c.want {
				t.Fatalf("Allow(%q) = %v; want %v", c.title, got, c.want)
			}
		})
	}
}

func TestFilterMatchesSnippetAndHan(t *testing.T) {
	f := NewFilter([]string{"hybrid", "比亚迪"})
	if !f.Allow(aggregator, "Weekend roundup", "A new hybrid lands") {
		t.Fatalf("expected snippet match")
	}
	if !f.Allow(aggregator, "比亚迪海豹上市", "") {
		t.Fatalf("expected Han substring match")
	}
}

func TestTimeWindowBoundary(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2025, 1, n, 12, 0, 0, 0, time.UTC) }
	cutoff := Cutoff(day(10), 3)

	if !InWindow(day(7), cutoff) {
		t.Fatalf("day 7 should be kept")
	}
	if InWindow(day(6), cutoff) {
		t.Fatalf("day 6 should be dropped")
	}
	if !InWindow(cutoff, cutoff) {
		t.Fatalf("item at the exact cutoff instant should be kept")
	}
	if InWindow(cutoff.Add(-time.Nanosecond), cutoff) {
		t.Fatalf("item just before the cutoff should be dropped")
	}
	if InWindow(time.Time{}, cutoff) {
		t.Fatalf("zero date must never pass")
	}
}

func TestApplyUsesOneCutoff(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{Source: direct, Title: "fresh", PublishedAt: now.Add(-time.Hour)},
		{Source: direct, Title: "stale", PublishedAt: now.Add(-72 * time.Hour)},
		{Source: aggregator, Title: "fresh off-topic", PublishedAt: now},
		{Source: aggregator, Title: "fresh car news", PublishedAt: now},
		{Source: direct, Title: "undated"},
	}
	got := NewFilter([]string{"car"}).Apply(items, Cutoff(now, 2))
	if len(got) != 2 || got[0].Title != "fresh" || got[1].Title != "fresh car news" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
