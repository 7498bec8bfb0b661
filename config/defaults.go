package config

import (
	"strings"
	"time"

	"newsdesk/types"
)

const (
	DatePolicyDrop = "drop"
	DatePolicyNow  = "now"

	BrandPolicyPreserve = "preserve"
	BrandPolicyOther    = "other"
)

// DefaultSources are the UAE automotive feeds the desk monitors out of the box.
var DefaultSources = []types.FeedSource{
	{ID: "drivearabia", Name: "DriveArabia", URL: "https://www.drivearabia.com/news/feed/", Type: types.SourceDirect},
	{ID: "gulfnews-auto", Name: "Gulf News Auto", URL: "https://gulfnews.com/rss/business/auto", Type: types.SourceDirect},
	{ID: "yallamotor", Name: "YallaMotor", URL: "https://uae.yallamotor.com/car-news/rss", Type: types.SourceDirect},
	{ID: "khaleejtimes-auto", Name: "Khaleej Times", URL: "https://www.khaleejtimes.com/business/auto.xml", Type: types.SourceDirect},
}

// DefaultKeywords is the vertical allow-list applied to aggregator sources.
var DefaultKeywords = []string{
	"car", "auto", "automotive", "vehicle", "EV", "SUV", "sedan", "hybrid",
	"motor", "dealer", "showroom", "RTA", "Toyota", "Nissan", "Hyundai", "Kia",
	"Lexus", "Ford", "Jetour", "MG", "Geely", "GWM", "BYD", "Chery", "GAC",
}

// DefaultBrands seeds the brand vocabulary when no catalog has been saved.
var DefaultBrands = []string{
	"Toyota 丰田", "Hyundai 现代", "Kia 起亚", "Nissan 日产", "Lexus 雷克萨斯",
	"Ford 福特", "Jetour 捷途", "MG 名爵", "Geely 吉利", "GWM 长城", "BYD 比亚迪",
	"ICAUR 奇瑞", "GAC 广汽", "政策相关", "Other 其他品牌",
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "console"
	}
	if c.App.Port == "" {
		c.App.Port = "8080"
	}

	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.HTTP.Accept == "" {
		c.HTTP.Accept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"
	}
	if c.HTTP.AcceptLanguage == "" {
		c.HTTP.AcceptLanguage = "en-US,en;q=0.9"
	}
	if c.HTTP.FeedTimeout <= 0 {
		c.HTTP.FeedTimeout = 8 * time.Second
	}
	if c.HTTP.PageTimeout <= 0 {
		c.HTTP.PageTimeout = 15 * time.Second
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 2 << 20
	}

	if len(c.Feeds.Sources) == 0 && c.Feeds.SourcesFile == "" {
		c.Feeds.Sources = append([]types.FeedSource(nil), DefaultSources...)
	}
	for i := range c.Feeds.Sources {
		src := &c.Feeds.Sources[i]
		if src.Type == "" {
			src.Type = types.SourceAggregator
		}
		if src.ID == "" {
			src.ID = types.GenerateID(src.URL)
		}
		if src.Name == "" {
			src.Name = src.URL
		}
	}
	if len(c.Feeds.Keywords) == 0 {
		c.Feeds.Keywords = append([]string(nil), DefaultKeywords...)
	}
	if c.Feeds.WindowDays <= 0 {
		c.Feeds.WindowDays = 7
	}
	if c.Feeds.MaxItemsPerSource <= 0 {
		c.Feeds.MaxItemsPerSource = 20
	}
	if c.Feeds.MaxItemsPerBatch <= 0 {
		c.Feeds.MaxItemsPerBatch = 200
	}
	c.Feeds.DatePolicy = strings.ToLower(strings.TrimSpace(c.Feeds.DatePolicy))
	if c.Feeds.DatePolicy != DatePolicyNow {
		c.Feeds.DatePolicy = DatePolicyDrop
	}
	if c.Feeds.SnippetChars <= 0 {
		c.Feeds.SnippetChars = 100
	}

	if c.Scraper.MaxTextChars <= 0 {
		c.Scraper.MaxTextChars = 3000
	}
	if c.Scraper.MinBodyChars <= 0 {
		c.Scraper.MinBodyChars = 50
	}
	if c.Scraper.MinParagraph <= 0 {
		c.Scraper.MinParagraph = 20
	}
	if c.Scraper.MaxSummaryChars <= 0 {
		c.Scraper.MaxSummaryChars = 200
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" && c.Storage.S3.Bucket != "" {
		c.Storage.Backend = "s3"
	}
	if c.Storage.S3.Prefix != "" {
		c.Storage.S3.Prefix = strings.Trim(c.Storage.S3.Prefix, "/") + "/"
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = "newsdesk:"
	}
	if c.Storage.Bolt.Path == "" {
		c.Storage.Bolt.Path = "newsdesk.db"
	}
	if c.Storage.Bolt.Bucket == "" {
		c.Storage.Bolt.Bucket = "newsdesk"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "./data"
	}
	if c.Storage.ListConcurrency <= 0 {
		c.Storage.ListConcurrency = 8
	}
	if c.Storage.Timeout <= 0 {
		c.Storage.Timeout = 30 * time.Second
	}

	if c.Dedup.Bloom.Key == "" {
		c.Dedup.Bloom.Key = "newsdesk:links:bloom"
	}
	if c.Dedup.Bloom.TTL <= 0 {
		c.Dedup.Bloom.TTL = 30 * 24 * time.Hour
	}
	if c.Dedup.Bloom.Capacity <= 0 {
		c.Dedup.Bloom.Capacity = 100000
	}
	if c.Dedup.Bloom.ErrorRate <= 0 {
		c.Dedup.Bloom.ErrorRate = 0.001
	}

	c.Extraction.Provider = strings.ToLower(strings.TrimSpace(c.Extraction.Provider))
	if c.Extraction.Provider == "" {
		c.Extraction.Provider = "dashscope"
	}
	if c.Extraction.Model == "" {
		switch c.Extraction.Provider {
		case "openai":
			c.Extraction.Model = "gpt-4o-mini"
		case "gemini":
			c.Extraction.Model = "gemini-2.5-flash"
		case "cohere":
			c.Extraction.Model = "command-r-plus"
		default:
			c.Extraction.Model = "qwen-plus"
		}
	}
	if c.Extraction.Timeout <= 0 {
		c.Extraction.Timeout = 60 * time.Second
	}
	if c.Extraction.Temperature <= 0 {
		c.Extraction.Temperature = 0.1
	}
	if c.Extraction.TopP <= 0 {
		c.Extraction.TopP = 0.8
	}
	c.Extraction.BrandPolicy = strings.ToLower(strings.TrimSpace(c.Extraction.BrandPolicy))
	if c.Extraction.BrandPolicy != BrandPolicyOther {
		c.Extraction.BrandPolicy = BrandPolicyPreserve
	}
	if len(c.Extraction.Brands) == 0 {
		c.Extraction.Brands = append([]string(nil), DefaultBrands...)
	}

	if c.Sinks.Kafka.Topic == "" {
		c.Sinks.Kafka.Topic = "newsdesk.promoted"
	}
	if c.Sinks.Kafka.GroupID == "" {
		c.Sinks.Kafka.GroupID = "newsdesk-intake"
	}
}
