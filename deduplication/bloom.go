package deduplication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// BloomConfig configures RedisBloom connection and key
type BloomConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string // redis key for bloom filter
	TTL      time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items)
	Capacity int
	// ErrorRate sets the desired false positive probability (e.g. 0.001)
	ErrorRate float64
	// If true, BF.RESERVE NONSCALING flag will be used
	NonScaling bool
}

// RedisBloom remembers link hashes in a RedisBloom filter. Servers without the
// module fall back to a plain Redis set under the same key.
type RedisBloom struct {
	client   redis.UniversalClient
	key      string
	ttl      time.Duration
	plainSet bool
	owned    bool
}

// NewRedisBloom dials redis and prepares the filter.
func NewRedisBloom(ctx context.Context, cfg BloomConfig) (*RedisBloom, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	rb, err := NewRedisBloomWithClient(ctx, client, cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	rb.owned = true
	return rb, nil
}

// NewRedisBloomWithClient prepares the filter on an existing client.
func NewRedisBloomWithClient(ctx context.Context, client redis.UniversalClient, cfg BloomConfig) (*RedisBloom, error) {
	if cfg.Key == "" {
		cfg.Key = "newsdesk:links:bloom"
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100000
	}
	if cfg.ErrorRate <= 0 {
		cfg.ErrorRate = 0.001
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	rb := &RedisBloom{client: client, key: cfg.Key, ttl: cfg.TTL}

	typ, err := client.Type(ctx, cfg.Key).Result()
	if err != nil {
		return nil, fmt.Errorf("inspect bloom key: %w", err)
	}
	switch typ {
	case "set":
		rb.plainSet = true
	case "none":
		// BF.RESERVE <key> <error_rate> <capacity> [NONSCALING]
		args := []interface{}{"BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity}
		if cfg.NonScaling {
			args = append(args, "NONSCALING")
		}
		if err := client.Do(ctx, args...).Err(); err != nil {
			if !isUnknownCommand(err) {
				return nil, fmt.Errorf("reserve bloom filter: %w", err)
			}
			rb.plainSet = true
		}
	}
	return rb, nil
}

// PlainSet reports whether the fallback set is in use.
func (r *RedisBloom) PlainSet() bool { return r.plainSet }

// Close closes the client if this filter dialed it.
func (r *RedisBloom) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}

// Exists checks if the hash is (probably) present.
func (r *RedisBloom) Exists(ctx context.Context, hash string) (bool, error) {
	if r.plainSet {
		return r.client.SIsMember(ctx, r.key, hash).Result()
	}

	res, err := r.client.Do(ctx, "BF.EXISTS", r.key, hash).Result()
	if err != nil {
		return false, err
	}
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case bool:
		return v, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Add inserts the hash and slides the key TTL forward.
func (r *RedisBloom) Add(ctx context.Context, hash string) error {
	var err error
	if r.plainSet {
		err = r.client.SAdd(ctx, r.key, hash).Err()
	} else {
		err = r.client.Do(ctx, "BF.ADD", r.key, hash).Err()
	}
	if err != nil {
		return err
	}
	if r.ttl > 0 {
		return r.client.Expire(ctx, r.key, r.ttl).Err()
	}
	return nil
}

func isUnknownCommand(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown command") || strings.Contains(msg, "err unknown")
}
