package rssfeeds

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"newsdesk/types"
)

// Filter applies the vertical keyword policy and the recency window.
type Filter struct {
	patterns []*regexp.Regexp
}

// NewFilter compiles keywords into case-insensitive whole-word matchers that
// also accept a plural "s"/"es" suffix. Keywords in scripts written without
// spaces (Han, Kana, Hangul) match as plain substrings.
func NewFilter(keywords []string) *Filter {
	f := &Filter{}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		var expr string
		if unspaced(kw) {
			expr = `(?i)` + regexp.QuoteMeta(kw)
		} else {
			expr = `(?i)(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(kw) + `(?:e?s)?(?:$|[^\p{L}\p{N}])`
		}
		f.patterns = append(f.patterns, regexp.MustCompile(expr))
	}
	return f
}

func unspaced(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			return true
		}
	}
	return false
}

// Matches reports whether text contains at least one keyword.
func (f *Filter) Matches(text string) bool {
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Allow applies the source policy: direct sources pass, anything else needs a
// keyword hit in title or snippet.
func (f *Filter) Allow(src types.FeedSource, title, snippet string) bool {
	if !src.IsAggregator() {
		return true
	}
	return f.Matches(title + "\n" + snippet)
}

// Cutoff returns the oldest publish instant still inside a window of days.
func Cutoff(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// InWindow keeps items published at or after cutoff. A zero publish time
// never passes.
func InWindow(published, cutoff time.Time) bool {
	if published.IsZero() {
		return false
	}
	return !published.Before(cutoff)
}

// Apply filters a batch against a single cutoff shared by every source.
func (f *Filter) Apply(items []Item, cutoff time.Time) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !InWindow(it.PublishedAt, cutoff) {
			continue
		}
		if !f.Allow(it.Source, it.Title, it.Snippet) {
			continue
		}
		out = append(out, it)
	}
	return out
}
