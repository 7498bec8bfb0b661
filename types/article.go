package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Status values carried by queued records.
const (
	StatusPending = "pending"
)

// Entry kinds stored in the pending queue.
const (
	KindFeed   = "feed"
	KindScrape = "scrape"
)

// CandidateItem is a feed-derived record that has passed filtering and is
// waiting for review or extraction.
type CandidateItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"pub_date"`
	SourceName  string    `json:"source_name"`
	Snippet     string    `json:"snippet"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      string    `json:"status"`
}

// Entry converts the candidate into its stored form.
func (c CandidateItem) Entry() PendingEntry {
	status := c.Status
	if status == "" {
		status = StatusPending
	}
	return PendingEntry{
		ID:          c.ID,
		Kind:        KindFeed,
		Title:       c.Title,
		URL:         c.Link,
		Summary:     c.Snippet,
		Source:      c.SourceName,
		ImageURL:    c.ImageURL,
		PublishedAt: c.PublishedAt,
		Status:      status,
	}
}

// ScrapedDocument is the result of scraping a single page on demand.
type ScrapedDocument struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Text      string    `json:"text"`
	ScrapedAt time.Time `json:"scraped_at"`
	Source    string    `json:"source"`
	ImageURL  string    `json:"image_url,omitempty"`
	Byline    string    `json:"byline,omitempty"`
}

// Entry converts the scraped document into its stored form.
func (d ScrapedDocument) Entry() PendingEntry {
	return PendingEntry{
		ID:        d.ID,
		Kind:      KindScrape,
		Title:     d.Title,
		URL:       d.URL,
		Summary:   d.Summary,
		Text:      d.Text,
		Source:    d.Source,
		ImageURL:  d.ImageURL,
		Byline:    d.Byline,
		ScrapedAt: d.ScrapedAt,
		Status:    StatusPending,
	}
}

// PendingEntry is one independently addressable record in the pending queue.
// It holds either a feed candidate or a scraped document.
type PendingEntry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary"`
	Text        string    `json:"text,omitempty"`
	Source      string    `json:"source"`
	ImageURL    string    `json:"image_url,omitempty"`
	Byline      string    `json:"byline,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at,omitempty"`
	Status      string    `json:"status"`
}

// RecencyTime is the timestamp used to order the queue.
func (e PendingEntry) RecencyTime() time.Time {
	if !e.ScrapedAt.IsZero() {
		return e.ScrapedAt
	}
	return e.PublishedAt
}

// Body returns the best text available for extraction.
func (e PendingEntry) Body() string {
	if e.Text != "" {
		return e.Text
	}
	if e.Summary == "" {
		return e.Title
	}
	return e.Title + "\n" + e.Summary
}

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
