// Package scraper turns an arbitrary article URL into clean text suitable for
// the pending queue and the extraction model.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"newsdesk/apperr"
	"newsdesk/config"
	"newsdesk/logging"
	"newsdesk/types"
	"newsdesk/webclient"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// boilerplate is removed before any text is read.
const boilerplate = "script, style, nav, footer, header, aside, iframe, svg, form, noscript, .ads, .ad, .advert, .comment, .comments, .sidebar"

const (
	untitled       = "Untitled"
	fallbackPrefix = 150
)

// Scraper fetches and cleans single pages.
type Scraper struct {
	client  webclient.Client
	headers map[string]string
	timeout time.Duration
	limits  config.ScraperConfig
	now     func() time.Time
	newID   func() string
	log     *zap.Logger
}

// New builds a Scraper from the shared HTTP settings and extraction limits.
func New(client webclient.Client, httpCfg config.HTTPConfig, limits config.ScraperConfig, log *zap.Logger) *Scraper {
	defaults := config.Config{HTTP: httpCfg, Scraper: limits}
	defaults.FillDefaults()
	httpCfg, limits = defaults.HTTP, defaults.Scraper

	return &Scraper{
		client:  client,
		headers: httpCfg.Headers(),
		timeout: httpCfg.PageTimeout,
		limits:  limits,
		now:     time.Now,
		newID:   func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
		log:     logging.OrNop(log),
	}
}

// Scrape fetches rawURL and extracts title, summary and body text.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (types.ScrapedDocument, error) {
	pageURL, err := validateURL(rawURL)
	if err != nil {
		return types.ScrapedDocument{}, apperr.New(apperr.KindInvalidInput, "scrape", rawURL, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.Get(ctx, pageURL.String(), s.headers)
	if err != nil {
		if apperr.IsTimeout(err) {
			err = fmt.Errorf("%w: site too slow (%s)", apperr.ErrTimeout, s.timeout)
		}
		return types.ScrapedDocument{}, apperr.New(apperr.KindSourceUnavailable, "scrape", rawURL, err)
	}
	if !resp.OK() {
		return types.ScrapedDocument{}, apperr.New(apperr.KindSourceUnavailable, "scrape", rawURL,
			fmt.Errorf("target refused connection: status %d", resp.StatusCode))
	}
	if resp.Truncated {
		s.log.Debug("page body truncated", zap.String("url", rawURL))
	}
	if final, err := url.Parse(resp.FinalURL); err == nil && final.Host != "" && final.String() != pageURL.String() {
		s.log.Debug("followed redirect", zap.String("url", rawURL), zap.String("final", resp.FinalURL))
		pageURL = final
	}

	body, err := toUTF8(resp.Body, resp.ContentType)
	if err != nil {
		return types.ScrapedDocument{}, apperr.New(apperr.KindUnparsableContent, "scrape", rawURL, err)
	}

	doc, err := s.Parse(pageURL, body)
	if err != nil {
		return types.ScrapedDocument{}, apperr.New(apperr.KindUnparsableContent, "scrape", rawURL, err)
	}
	s.log.Info("page scraped",
		zap.String("url", rawURL),
		zap.String("title", doc.Title),
		zap.Int("chars", len([]rune(doc.Text))))
	return doc, nil
}

// Parse extracts a document from already fetched HTML. It returns
// apperr.ErrContentTooShort when neither paragraphs nor the whole body carry
// enough text, which usually means a client-rendered or anti-bot page.
func (s *Scraper) Parse(pageURL *url.URL, page []byte) (types.ScrapedDocument, error) {
	dom, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return types.ScrapedDocument{}, fmt.Errorf("parse html: %w", err)
	}
	removeComments(dom)
	doc := goquery.NewDocumentFromNode(dom)
	doc.Find(boilerplate).Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}
	if title == "" {
		title = untitled
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		t := strings.TrimSpace(p.Text())
		if runeLen(t) > s.limits.MinParagraph {
			paragraphs = append(paragraphs, t)
		}
	})
	text := strings.Join(paragraphs, "\n")

	if runeLen(text) < s.limits.MinBodyChars {
		text = visibleText(doc.Find("body"))
		if runeLen(text) < s.limits.MinBodyChars {
			return types.ScrapedDocument{}, apperr.ErrContentTooShort
		}
	}
	text = truncate(text, s.limits.MaxTextChars)

	summary := metaContent(doc, `meta[name="description"]`)
	if summary == "" {
		summary = metaContent(doc, `meta[property="og:description"]`)
	}
	if summary != "" {
		summary = truncate(summary, s.limits.MaxSummaryChars)
	} else {
		summary = truncate(text, fallbackPrefix) + "..."
	}

	out := types.ScrapedDocument{
		ID:        s.newID(),
		URL:       pageURL.String(),
		Title:     title,
		Summary:   summary,
		Text:      text,
		ScrapedAt: s.now().UTC(),
		Source:    strings.TrimPrefix(strings.ToLower(pageURL.Hostname()), "www."),
	}
	s.enrich(&out, pageURL, page)
	return out, nil
}

// blockTags separate their text from neighbouring text in visibleText.
var blockTags = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "figcaption": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "li": true, "main": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

// visibleText is the selection's text with whitespace collapsed and a space
// at every block boundary, so adjacent paragraphs do not run together.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		block := n.Type == html.ElementNode && blockTags[n.Data]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// enrich fills image and byline from readability metadata when available.
func (s *Scraper) enrich(doc *types.ScrapedDocument, pageURL *url.URL, page []byte) {
	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		s.log.Debug("readability metadata unavailable", zap.String("url", doc.URL), zap.Error(err))
		return
	}
	doc.ImageURL = strings.TrimSpace(article.Image)
	doc.Byline = strings.TrimSpace(article.Byline)
}

func validateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url has no host")
	}
	return u, nil
}

func toUTF8(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body, nil
	}
	return io.ReadAll(r)
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

func runeLen(s string) int { return len([]rune(s)) }

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
