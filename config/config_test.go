package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"newsdesk/types"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestFillDefaults(t *testing.T) {
	var c Config
	c.FillDefaults()

	if c.HTTP.FeedTimeout != 8*time.Second || c.HTTP.PageTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts: %v %v", c.HTTP.FeedTimeout, c.HTTP.PageTimeout)
	}
	if c.Feeds.MaxItemsPerSource != 20 || c.Feeds.WindowDays != 7 {
		t.Fatalf("unexpected feed defaults: %+v", c.Feeds)
	}
	if c.Feeds.DatePolicy != DatePolicyDrop {
		t.Fatalf("DatePolicy = %q; want drop", c.Feeds.DatePolicy)
	}
	if len(c.Feeds.Sources) != len(DefaultSources) {
		t.Fatalf("expected default sources, got %d", len(c.Feeds.Sources))
	}
	if c.Scraper.MaxTextChars != 3000 || c.Scraper.MinBodyChars != 50 {
		t.Fatalf("unexpected scraper defaults: %+v", c.Scraper)
	}
	if c.Extraction.Model != "qwen-plus" || c.Extraction.BrandPolicy != BrandPolicyPreserve {
		t.Fatalf("unexpected extraction defaults: %+v", c.Extraction)
	}
	if c.Storage.Backend != "" {
		t.Fatalf("storage backend should stay unset without a bucket, got %q", c.Storage.Backend)
	}
	h := c.HTTP.Headers()
	if h["User-Agent"] == "" || h["Pragma"] != "no-cache" {
		t.Fatalf("unexpected headers: %v", h)
	}
}

func TestFillDefaultsNormalizes(t *testing.T) {
	c := Config{
		Feeds:      FeedsConfig{DatePolicy: " NOW ", Sources: []types.FeedSource{{URL: "https://x.test/rss"}}},
		Storage:    StorageConfig{S3: S3Config{Bucket: "b", Prefix: "/news/"}},
		Extraction: ExtractionConfig{Provider: "OpenAI", BrandPolicy: "Other"},
	}
	c.FillDefaults()

	if c.Feeds.DatePolicy != DatePolicyNow {
		t.Fatalf("DatePolicy = %q; want now", c.Feeds.DatePolicy)
	}
	src := c.Feeds.Sources[0]
	if src.Type != types.SourceAggregator || src.ID == "" || src.Name == "" {
		t.Fatalf("source defaults not applied: %+v", src)
	}
	if c.Storage.Backend != "s3" || c.Storage.S3.Prefix != "news/" {
		t.Fatalf("unexpected storage: %+v", c.Storage)
	}
	if c.Extraction.Model != "gpt-4o-mini" || c.Extraction.BrandPolicy != BrandPolicyOther {
		t.Fatalf("unexpected extraction: %+v", c.Extraction)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
app:
  log_level: debug
feeds:
  window_days: 3
  keywords: [car, suv]
  sources:
    - name: Agg
      url: https://agg.test/rss
      type: aggregator
http:
  feed_timeout: 2s
`)
	t.Setenv("S3_BUCKET", "pending-bucket")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.App.LogLevel != "debug" || cfg.Feeds.WindowDays != 3 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.HTTP.FeedTimeout != 2*time.Second {
		t.Fatalf("FeedTimeout = %v; want 2s", cfg.HTTP.FeedTimeout)
	}
	if len(cfg.Feeds.Sources) != 1 || !cfg.Feeds.Sources[0].IsAggregator() {
		t.Fatalf("unexpected sources: %+v", cfg.Feeds.Sources)
	}
	if cfg.Storage.S3.Bucket != "pending-bucket" || cfg.Storage.Backend != "s3" {
		t.Fatalf("env override not applied: %+v", cfg.Storage)
	}
}

func TestParseSources(t *testing.T) {
	list := []byte(`
- name: A
  url: https://a.test/feed
  type: direct
- name: B
  url: https://b.test/feed
`)
	got, err := ParseSources(list)
	if err != nil {
		t.Fatalf("ParseSources(list) error: %v", err)
	}
	if len(got) != 2 || got[0].IsAggregator() || !got[1].IsAggregator() {
		t.Fatalf("unexpected sources: %+v", got)
	}

	doc := []byte(`{"sources":[{"name":"C","url":"https://c.test/feed","type":"direct"}]}`)
	got, err = ParseSources(doc)
	if err != nil {
		t.Fatalf("ParseSources(doc) error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "C" {
		t.Fatalf("unexpected sources: %+v", got)
	}

	if _, err := ParseSources([]byte(`- name: NoURL`)); err == nil {
		t.Fatalf("expected error for source without url")
	}
}
