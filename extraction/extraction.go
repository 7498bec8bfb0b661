// Package extraction turns raw article text into a validated ExtractedNewsData
// record by prompting an LLM and cleaning whatever comes back.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdesk/apperr"
	"newsdesk/config"
	"newsdesk/logging"
	"newsdesk/types"

	"go.uber.org/zap"
)

// Completer is a single-turn chat backend. Implementations return the raw
// assistant text and classify provider failures as apperr.KindUpstreamModel.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// Client builds prompts, calls the backend once and coerces the reply.
type Client struct {
	model       Completer
	timeout     time.Duration
	brandPolicy string
	log         *zap.Logger
	now         func() time.Time
}

// New wraps a Completer with the extraction settings in cfg.
func New(model Completer, cfg config.ExtractionConfig, log *zap.Logger) *Client {
	c := config.Config{Extraction: cfg}
	c.FillDefaults()
	return &Client{
		model:       model,
		timeout:     c.Extraction.Timeout,
		brandPolicy: c.Extraction.BrandPolicy,
		log:         logging.OrNop(log),
		now:         time.Now,
	}
}

// Backend returns the name of the underlying model provider.
func (c *Client) Backend() string { return c.model.Name() }

// Extract sends text to the model and returns a coerced record. There are no
// retries; every failure carries a distinct apperr kind.
func (c *Client) Extract(ctx context.Context, text string, knownBrands []string) (types.ExtractedNewsData, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.ExtractedNewsData{}, apperr.New(apperr.KindInvalidInput, "extract", "", errors.New("text is empty"))
	}

	today := c.now().Format(dateLayout)
	system := buildPrompt(knownBrands, today)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.model.Complete(ctx, system, "News Text: "+text)
	if err != nil {
		if apperr.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.log.Warn("extraction timed out", zap.String("backend", c.model.Name()), zap.Duration("timeout", c.timeout))
			return types.ExtractedNewsData{}, apperr.New(apperr.KindTimeout, "extract", c.model.Name(),
				fmt.Errorf("%w: model did not answer within %s", apperr.ErrTimeout, c.timeout))
		}
		if apperr.KindOf(err) != apperr.KindUnknown {
			return types.ExtractedNewsData{}, err
		}
		return types.ExtractedNewsData{}, apperr.New(apperr.KindUpstreamModel, "extract", c.model.Name(), err)
	}
	if strings.TrimSpace(raw) == "" {
		return types.ExtractedNewsData{}, apperr.New(apperr.KindModelOutputInvalid, "extract", c.model.Name(), apperr.ErrEmptyContent)
	}

	fields, err := decode(raw)
	if err != nil {
		c.log.Warn("model output rejected", zap.String("backend", c.model.Name()), zap.String("output", preview(raw)))
		return types.ExtractedNewsData{}, apperr.New(apperr.KindModelOutputInvalid, "extract", c.model.Name(), err)
	}

	rec := coerce(fields, coerceOptions{
		brands:      knownBrands,
		brandPolicy: c.brandPolicy,
		today:       today,
	})
	c.log.Debug("extraction complete",
		zap.String("backend", c.model.Name()),
		zap.String("brand", rec.Brand),
		zap.String("type", string(rec.Type)),
		zap.Duration("took", time.Since(start)))
	return rec, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > 200 {
		return string(r[:200]) + "..."
	}
	return s
}
