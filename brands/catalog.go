// Package brands persists the editable brand vocabulary used by extraction.
package brands

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"newsdesk/apperr"
	"newsdesk/logging"
	"newsdesk/storage"

	"go.uber.org/zap"
)

// Key is the blob holding the saved vocabulary.
const Key = "brands.json"

// Catalog loads and saves the brand list.
type Catalog struct {
	blobs    storage.Blobs
	defaults []string
	log      *zap.Logger
}

func NewCatalog(blobs storage.Blobs, defaults []string, log *zap.Logger) *Catalog {
	return &Catalog{blobs: blobs, defaults: Normalize(defaults), log: logging.OrNop(log)}
}

// Load returns the saved list, or the defaults when nothing usable is stored.
func (c *Catalog) Load(ctx context.Context) []string {
	data, err := c.blobs.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			c.log.Warn("brand catalog unavailable; using defaults", zap.Error(err))
		}
		return c.Defaults()
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		c.log.Warn("brand catalog corrupt; using defaults", zap.Error(err))
		return c.Defaults()
	}
	if list = Normalize(list); len(list) == 0 {
		return c.Defaults()
	}
	return list
}

// Save replaces the stored list.
func (c *Catalog) Save(ctx context.Context, list []string) ([]string, error) {
	list = Normalize(list)
	if len(list) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "save brands", "", errors.New("brand list is empty"))
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	if err := c.blobs.Put(ctx, Key, data); err != nil {
		if apperr.KindOf(err) == apperr.KindStoreUnavailable {
			return nil, err
		}
		return nil, apperr.New(apperr.KindStoreUnavailable, "save brands", Key, err)
	}
	c.log.Info("brand catalog saved", zap.Int("brands", len(list)))
	return list, nil
}

// Defaults returns a copy of the configured fallback list.
func (c *Catalog) Defaults() []string {
	return append([]string(nil), c.defaults...)
}

// Normalize trims entries and drops blanks and case-insensitive duplicates,
// keeping first-seen order.
func Normalize(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, b := range list {
		b = strings.TrimSpace(b)
		k := strings.ToLower(b)
		if b == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, b)
	}
	return out
}
