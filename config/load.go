package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings keeps the flat environment names used by earlier deployments
// working alongside the nested NEWSDESK_* form.
var envBindings = map[string][]string{
	"app.port":                    {"PORT"},
	"app.log_level":               {"LOG_LEVEL"},
	"storage.backend":             {"STORAGE_BACKEND"},
	"storage.s3.bucket":           {"S3_BUCKET"},
	"storage.s3.region":           {"S3_REGION"},
	"storage.s3.profile":          {"S3_PROFILE"},
	"storage.s3.prefix":           {"S3_PREFIX"},
	"storage.s3.endpoint":         {"S3_ENDPOINT"},
	"storage.s3.use_path_style":   {"S3_USE_PATH_STYLE"},
	"storage.redis.addr":          {"REDIS_ADDR"},
	"storage.redis.password":      {"REDIS_PASS"},
	"dedup.bloom.key":             {"BLOOM_KEY"},
	"dedup.bloom.capacity":        {"BLOOM_CAPACITY"},
	"dedup.bloom.error_rate":      {"BLOOM_ERROR_RATE"},
	"dedup.bloom.non_scaling":     {"BLOOM_NONSCALING"},
	"extraction.provider":         {"LLM_PROVIDER"},
	"extraction.api_key":          {"DASHSCOPE_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "COHERE_API_KEY"},
	"sinks.kafka.request_topic":   {"KAFKA_REQUEST_TOPIC"},
	"sinks.sqs.queue_url":         {"SQS_QUEUE_URL"},
	"sinks.sqs.region":            {"AWS_REGION"},
	"sinks.sqs.access_key_id":     {"AWS_ACCESS_KEY_ID"},
	"sinks.sqs.secret_access_key": {"AWS_SECRET_ACCESS_KEY"},
	"ingest.schedule":             {"INGEST_SCHEDULE"},
}

// Load reads configuration from file (optional), .env and the environment,
// then applies defaults. An empty path searches ./config.yaml,
// $HOME/.config/newsdesk and ./configs.
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/newsdesk")
		v.AddConfigPath("configs")
	}

	v.SetEnvPrefix("NEWSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	if names := os.Getenv("KAFKA_BOOTSTRAP_SERVERS"); names != "" {
		v.Set("sinks.kafka.brokers", strings.Split(names, ","))
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Feeds.SourcesFile != "" {
		sources, err := LoadSources(cfg.Feeds.SourcesFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Feeds.Sources = append(cfg.Feeds.Sources, sources...)
	}

	cfg.FillDefaults()
	return cfg, nil
}
