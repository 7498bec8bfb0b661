package intake

import (
	"context"
	"net/url"
	"strings"

	"newsdesk/apperr"
	"newsdesk/logging"
	"newsdesk/types"

	"go.uber.org/zap"
)

// ScrapeRequest asks the desk to scrape and queue one page.
type ScrapeRequest struct {
	URL         string `json:"url"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// Scraper is the pipeline operation a scrape request triggers.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (types.ScrapedDocument, error)
}

// NewScrapeHandler builds a handler that scrapes each requested URL.
// Permanent failures (bad URL, unreadable page) are committed; transient
// ones are left for redelivery.
func NewScrapeHandler(s Scraper, log *zap.Logger) *TypedMessageHandler[ScrapeRequest] {
	log = logging.OrNop(log)
	return &TypedMessageHandler[ScrapeRequest]{
		Validate: func(msg *ScrapeRequest) bool {
			u, err := url.Parse(strings.TrimSpace(msg.URL))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				log.Warn("scrape request rejected", zap.String("url", msg.URL))
				return false
			}
			return true
		},
		Process: func(ctx context.Context, msg *ScrapeRequest) error {
			doc, err := s.Scrape(ctx, strings.TrimSpace(msg.URL))
			if err != nil {
				switch apperr.KindOf(err) {
				case apperr.KindInvalidInput, apperr.KindUnparsableContent:
					log.Warn("scrape request dropped", zap.String("url", msg.URL), zap.Error(err))
					return nil
				}
				return err
			}
			log.Info("scrape request queued", zap.String("id", doc.ID), zap.String("url", doc.URL), zap.String("requested_by", msg.RequestedBy))
			return nil
		},
		AlwaysMark: true,
	}
}
