package config

import (
	"time"

	"newsdesk/types"
)

// AppConfig holds process-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // console | json
	Port      string `mapstructure:"port"`
}

// HTTPConfig is the single source of outbound request headers and timeouts
// shared by the feed fetcher and the page scraper.
type HTTPConfig struct {
	UserAgent      string        `mapstructure:"user_agent"`
	Accept         string        `mapstructure:"accept"`
	AcceptLanguage string        `mapstructure:"accept_language"`
	FeedTimeout    time.Duration `mapstructure:"feed_timeout"`
	PageTimeout    time.Duration `mapstructure:"page_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// Headers returns the browser-like header set sent on every outbound fetch.
func (h HTTPConfig) Headers() map[string]string {
	return map[string]string{
		"User-Agent":                h.UserAgent,
		"Accept":                    h.Accept,
		"Accept-Language":           h.AcceptLanguage,
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"Upgrade-Insecure-Requests": "1",
	}
}

// FeedsConfig controls aggregation and filtering.
type FeedsConfig struct {
	SourcesFile       string             `mapstructure:"sources_file"`
	Sources           []types.FeedSource `mapstructure:"sources"`
	Keywords          []string           `mapstructure:"keywords"`
	WindowDays        int                `mapstructure:"window_days"`
	MaxItemsPerSource int                `mapstructure:"max_items_per_source"`
	MaxItemsPerBatch  int                `mapstructure:"max_items_per_batch"`
	DatePolicy        string             `mapstructure:"date_policy"` // drop | now
	SnippetChars      int                `mapstructure:"snippet_chars"`
}

// ScraperConfig controls single-page extraction limits.
type ScraperConfig struct {
	MaxTextChars    int `mapstructure:"max_text_chars"`
	MinBodyChars    int `mapstructure:"min_body_chars"`
	MinParagraph    int `mapstructure:"min_paragraph_chars"`
	MaxSummaryChars int `mapstructure:"max_summary_chars"`
}

// S3Config mirrors the optional S3 settings; values fall back to the AWS chain.
type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	Profile      string `mapstructure:"profile"`
	Prefix       string `mapstructure:"prefix"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// BoltConfig points at an embedded bbolt file.
type BoltConfig struct {
	Path   string `mapstructure:"path"`
	Bucket string `mapstructure:"bucket"`
}

// StorageConfig selects the blob backend holding pending records and brands.
type StorageConfig struct {
	Backend         string        `mapstructure:"backend"` // s3 | redis | bolt | dir | none
	Dir             string        `mapstructure:"dir"`
	S3              S3Config      `mapstructure:"s3"`
	Redis           RedisConfig   `mapstructure:"redis"`
	Bolt            BoltConfig    `mapstructure:"bolt"`
	ListConcurrency int           `mapstructure:"list_concurrency"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// BloomConfig configures the optional RedisBloom link memory.
type BloomConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Key        string        `mapstructure:"key"`
	TTL        time.Duration `mapstructure:"ttl"`
	Capacity   int           `mapstructure:"capacity"`
	ErrorRate  float64       `mapstructure:"error_rate"`
	NonScaling bool          `mapstructure:"non_scaling"`
}

// DedupConfig groups deduplication settings.
type DedupConfig struct {
	Bloom BloomConfig `mapstructure:"bloom"`
}

// ExtractionConfig selects and tunes the LLM backend.
type ExtractionConfig struct {
	Provider    string        `mapstructure:"provider"` // dashscope | openai | gemini | cohere
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	TopP        float64       `mapstructure:"top_p"`
	BrandPolicy string        `mapstructure:"brand_policy"` // preserve | other
	Brands      []string      `mapstructure:"brands"`
}

// KafkaConfig configures the promotion producer and the scrape request consumer.
type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	RequestTopic string   `mapstructure:"request_topic"` // scrape requests consumed in serve mode
	GroupID      string   `mapstructure:"group_id"`
}

// SQSConfig configures the SQS promotion sender.
type SQSConfig struct {
	QueueURL        string `mapstructure:"queue_url"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// SinksConfig lists where promoted news is published. Empty means nowhere.
type SinksConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
	SQS   SQSConfig   `mapstructure:"sqs"`
}

// IngestConfig controls scheduled ingestion in serve mode.
type IngestConfig struct {
	Schedule string `mapstructure:"schedule"` // cron expression, empty disables
}

// Config is the top-level configuration structure.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Feeds      FeedsConfig      `mapstructure:"feeds"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Dedup      DedupConfig      `mapstructure:"dedup"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Sinks      SinksConfig      `mapstructure:"sinks"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
}
