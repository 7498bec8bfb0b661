package orchestrator

import (
	"context"
	"errors"
	"io"

	"newsdesk/brands"
	"newsdesk/config"
	"newsdesk/deduplication"
	"newsdesk/extraction"
	"newsdesk/logging"
	"newsdesk/pending"
	"newsdesk/rssfeeds"
	"newsdesk/scraper"
	"newsdesk/sink"
	"newsdesk/storage"
	"newsdesk/webclient"

	"go.uber.org/zap"
)

// App is a wired Pipeline plus the resources it owns.
type App struct {
	Pipeline *Pipeline
	Brands   *brands.Catalog
	Config   config.Config

	closers []io.Closer
}

// Build constructs every component from cfg. Optional collaborators that
// cannot be reached (blob store, link memory, model backend) are logged and
// left out so read paths keep working.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	log = logging.OrNop(log)
	cfg.FillDefaults()
	app := &App{Config: cfg}

	web := webclient.New(webclient.Options{
		Timeout:      cfg.HTTP.PageTimeout,
		Headers:      cfg.HTTP.Headers(),
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})
	fetcher := rssfeeds.NewFetcher(web, cfg.HTTP, cfg.Feeds, log.Named("feeds"))
	aggregator := rssfeeds.NewAggregator(fetcher, rssfeeds.NewFilter(cfg.Feeds.Keywords), log.Named("feeds"))

	blobs, closer := storage.Open(ctx, cfg.Storage, log.Named("storage"))
	app.closers = append(app.closers, closer)
	store := pending.NewStore(blobs, cfg.Storage.ListConcurrency, log.Named("pending"))
	app.Brands = brands.NewCatalog(blobs, cfg.Extraction.Brands, log.Named("brands"))

	var memory deduplication.Memory
	if cfg.Dedup.Bloom.Enabled {
		rb, err := deduplication.NewRedisBloom(ctx, deduplication.BloomConfig{
			Addr:       cfg.Storage.Redis.Addr,
			Password:   cfg.Storage.Redis.Password,
			DB:         cfg.Storage.Redis.DB,
			Key:        cfg.Dedup.Bloom.Key,
			TTL:        cfg.Dedup.Bloom.TTL,
			Capacity:   cfg.Dedup.Bloom.Capacity,
			ErrorRate:  cfg.Dedup.Bloom.ErrorRate,
			NonScaling: cfg.Dedup.Bloom.NonScaling,
		})
		if err != nil {
			log.Warn("link memory disabled", zap.Error(err))
		} else {
			memory = rb
			app.closers = append(app.closers, rb)
			log.Info("link memory ready", zap.String("key", cfg.Dedup.Bloom.Key), zap.Bool("plain_set", rb.PlainSet()))
		}
	}

	var extractor Extractor
	if cfg.Extraction.APIKey == "" {
		log.Warn("no model API key configured; extraction disabled", zap.String("provider", cfg.Extraction.Provider))
	} else if model, err := extraction.NewCompleter(ctx, cfg.Extraction); err != nil {
		log.Warn("extraction disabled", zap.String("provider", cfg.Extraction.Provider), zap.Error(err))
	} else {
		extractor = extraction.New(model, cfg.Extraction, log.Named("extraction"))
		log.Info("extraction ready", zap.String("backend", model.Name()))
	}

	publisher, err := sink.Open(ctx, cfg.Sinks, log.Named("sink"))
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.closers = append(app.closers, publisher)

	app.Pipeline = New(Deps{
		Collector: aggregator,
		Scraper:   scraper.New(web, cfg.HTTP, cfg.Scraper, log.Named("scraper")),
		Store:     store,
		Dedup:     deduplication.NewDeduplicator(memory, log.Named("dedup")),
		Extractor: extractor,
		Brands:    app.Brands,
		Publisher: publisher,
		Sources:   cfg.Feeds.Sources,
		Days:      cfg.Feeds.WindowDays,
	}, log.Named("pipeline"))
	return app, nil
}

// Close releases every owned resource in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
