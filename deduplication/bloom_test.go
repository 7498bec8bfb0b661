package deduplication

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"simple", "https://example.com/path", "https://example.com/path"},
		{"utm and fragment", "https://example.com/path?utm_source=feed#section", "https://example.com/path"},
		{"uppercase host", "HTTP://Example.COM/", "http://example.com"},
		{"tracking params", "https://example.com/?fbclid=XYZ&gclid=ABC&utm_medium=1", "https://example.com"},
		{"keeps real query", "https://example.com/a?id=7&utm_campaign=x", "https://example.com/a?id=7"},
		{"empty", "   ", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeURL(c.url); got != c.want {
				t.Fatalf("NormalizeURL(%q) = %q; want %q", c.url, got, c.want)
			}
		})
	}

	if LinkHash("https://Example.com/a/?utm_source=x") != LinkHash("https://example.com/a") {
		t.Fatalf("LinkHash should be stable across tracking variants")
	}
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisBloomFallsBackToSet(t *testing.T) {
	mr, client := newMiniredisClient(t)
	ctx := context.Background()

	rb, err := NewRedisBloomWithClient(ctx, client, BloomConfig{Key: "links", TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewRedisBloomWithClient error: %v", err)
	}
	if !rb.PlainSet() {
		t.Fatalf("expected plain set fallback without the bloom module")
	}

	hash := LinkHash("https://example.com/a")
	if ok, err := rb.Exists(ctx, hash); err != nil || ok {
		t.Fatalf("Exists before Add = %v, %v", ok, err)
	}
	if err := rb.Add(ctx, hash); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if ok, err := rb.Exists(ctx, hash); err != nil || !ok {
		t.Fatalf("Exists after Add = %v, %v", ok, err)
	}
	if ttl := mr.TTL("links"); ttl != time.Hour {
		t.Fatalf("TTL = %v; want 1h", ttl)
	}
}

func TestRedisBloomReusesExistingSet(t *testing.T) {
	mr, client := newMiniredisClient(t)
	if _, err := mr.SAdd("links", "abc"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rb, err := NewRedisBloomWithClient(context.Background(), client, BloomConfig{Key: "links"})
	if err != nil {
		t.Fatalf("NewRedisBloomWithClient error: %v", err)
	}
	if ok, _ := rb.Exists(context.Background(), "abc"); !ok {
		t.Fatalf("expected seeded member to exist")
	}
}
