package rssfeeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsdesk/apperr"
	"newsdesk/config"
	"newsdesk/types"
	"newsdesk/webclient"
)

func rssDoc(items ...string) string {
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>feed</title>` +
		strings.Join(items, "") + `</channel></rss>`
}

func rssItem(title, link string, pub time.Time, desc string) string {
	date := ""
	if !pub.IsZero() {
		date = "<pubDate>" + pub.Format(time.RFC1123Z) + "</pubDate>"
	}
	return fmt.Sprintf("<item><title>%s</title><link>%s</link>%s<description><![CDATA[%s]]></description></item>",
		title, link, date, desc)
}

func newTestFetcher(t *testing.T, feeds config.FeedsConfig, timeout time.Duration) *Fetcher {
	t.Helper()
	cfg := config.Config{Feeds: feeds, HTTP: config.HTTPConfig{FeedTimeout: timeout}}
	cfg.FillDefaults()
	return NewFetcher(webclient.New(webclient.Options{}), cfg.HTTP, cfg.Feeds, nil)
}

func TestFetchAllPartialFailure(t *testing.T) {
	now := time.Now()
	var gotUA string
	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, rssDoc(
			rssItem("Older", "https://news.test/older", now.Add(-2*time.Hour), "old"),
			rssItem("Newer", "https://news.test/newer", now.Add(-time.Hour), "<b>new</b> text"),
		))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		fmt.Fprint(w, rssDoc(rssItem("Late", "https://news.test/late", now, "")))
	})
	mux.HandleFunc("/blocked", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not a feed")
	})
	mux.HandleFunc("/other", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc(rssItem("Newest", "https://other.test/x", now, "")))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := newTestFetcher(t, config.FeedsConfig{}, 200*time.Millisecond)
	sources := []types.FeedSource{
		{Name: "good", URL: srv.URL + "/good"},
		{Name: "slow", URL: srv.URL + "/slow"},
		{Name: "blocked", URL: srv.URL + "/blocked"},
		{Name: "broken", URL: srv.URL + "/broken"},
		{Name: "other", URL: srv.URL + "/other"},
	}

	start := time.Now()
	items := f.FetchAll(context.Background(), sources)
	if elapsed := time.Since(start); elapsed > 1500*time.Millisecond {
		t.Fatalf("slow source held the batch for %v", elapsed)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items from healthy sources, got %d: %+v", len(items), items)
	}
	want := []string{"Newest", "Newer", "Older"}
	for i, title := range want {
		if items[i].Title != title {
			t.Fatalf("items[%d].Title = %q; want %q", i, items[i].Title, title)
		}
	}
	if items[1].Snippet != "new text" {
		t.Fatalf("snippet not stripped: %q", items[1].Snippet)
	}
	if !strings.Contains(gotUA, "Mozilla") {
		t.Fatalf("browser User-Agent not sent: %q", gotUA)
	}
}

func TestFetchSourceErrorKinds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/blocked", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "definitely not a feed")
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := newTestFetcher(t, config.FeedsConfig{}, 100*time.Millisecond)
	ctx := context.Background()

	_, err := f.FetchSource(ctx, types.FeedSource{URL: srv.URL + "/blocked"})
	if apperr.KindOf(err) != apperr.KindSourceUnavailable {
		t.Fatalf("blocked: kind = %q (%v)", apperr.KindOf(err), err)
	}
	_, err = f.FetchSource(ctx, types.FeedSource{URL: srv.URL + "/broken"})
	if apperr.KindOf(err) != apperr.KindUnparsableContent {
		t.Fatalf("broken: kind = %q (%v)", apperr.KindOf(err), err)
	}
	_, err = f.FetchSource(ctx, types.FeedSource{URL: srv.URL + "/slow"})
	if apperr.KindOf(err) != apperr.KindSourceUnavailable || !apperr.IsTimeout(err) {
		t.Fatalf("slow: kind = %q timeout=%v (%v)", apperr.KindOf(err), apperr.IsTimeout(err), err)
	}
}

func TestFetchSourceCapsAndDatePolicy(t *testing.T) {
	now := time.Now()
	var items []string
	for i := 0; i < 25; i++ {
		items = append(items, rssItem(fmt.Sprintf("Item %d", i), fmt.Sprintf("https://news.test/%d", i), now.Add(-time.Duration(i)*time.Minute), ""))
	}
	items = append([]string{
		rssItem("Undated", "https://news.test/undated", time.Time{}, ""),
		"<item><title>Odd date</title><link>https://news.test/odd</link><pubDate>2024-03-05 14:30</pubDate></item>",
		"<item><title></title><link>https://news.test/untitled</link></item>",
	}, items...)
	body := rssDoc(items...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()
	src := types.FeedSource{Name: "s", URL: srv.URL}

	strict := newTestFetcher(t, config.FeedsConfig{MaxItemsPerSource: 5}, time.Second)
	got, err := strict.FetchSource(context.Background(), src)
	if err != nil {
		t.Fatalf("FetchSource error: %v", err)
	}
	// 5 raw items considered: undated dropped, odd date parsed, untitled dropped
	if len(got) != 3 {
		t.Fatalf("strict: expected 3 items, got %d: %+v", len(got), got)
	}
	if got[0].Title != "Odd date" || got[0].PublishedAt.Year() != 2024 {
		t.Fatalf("tolerant date parse failed: %+v", got[0])
	}

	lenient := newTestFetcher(t, config.FeedsConfig{MaxItemsPerSource: 5, DatePolicy: config.DatePolicyNow}, time.Second)
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lenient.now = func() time.Time { return fixed }
	got, err = lenient.FetchSource(context.Background(), src)
	if err != nil {
		t.Fatalf("FetchSource error: %v", err)
	}
	if len(got) != 4 || got[0].Title != "Undated" || !got[0].PublishedAt.Equal(fixed) {
		t.Fatalf("lenient: unexpected items: %+v", got)
	}

	// the batch limit belongs to the aggregator; FetchAll only caps per source
	capped := newTestFetcher(t, config.FeedsConfig{MaxItemsPerBatch: 7}, time.Second)
	all := capped.FetchAll(context.Background(), []types.FeedSource{src})
	if len(all) != 18 {
		t.Fatalf("FetchAll: got %d items, want 18", len(all))
	}
}
