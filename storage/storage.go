// Package storage provides key-per-record blob backends. Every record lives
// under its own key so writers never contend on a shared document.
package storage

import (
	"context"
	"fmt"
	"io"

	"newsdesk/apperr"
	"newsdesk/config"
	"newsdesk/logging"

	"go.uber.org/zap"
)

// Blobs is the minimal key/value surface the pipeline needs.
type Blobs interface {
	// List returns every key starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Get returns the value at key or an error wrapping apperr.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	Name() string
}

// Open builds the configured backend. A backend that cannot be reached or is
// not configured yields Unavailable so read paths can degrade gracefully.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (Blobs, io.Closer) {
	log = logging.OrNop(log)

	var (
		b      Blobs
		closer io.Closer = nopCloser{}
		err    error
	)
	switch cfg.Backend {
	case "s3":
		b, err = NewS3(ctx, cfg.S3)
	case "redis":
		var r *Redis
		r, err = DialRedis(ctx, cfg.Redis)
		if err == nil {
			b, closer = r, r
		}
	case "bolt":
		var bb *Bolt
		bb, err = OpenBolt(cfg.Bolt.Path, cfg.Bolt.Bucket)
		if err == nil {
			b, closer = bb, bb
		}
	case "dir":
		b, err = NewDir(cfg.Dir)
	case "", "none":
		err = apperr.ErrNotConfigured
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		log.Warn("blob storage unavailable", zap.String("backend", cfg.Backend), zap.Error(err))
		return Unavailable{Reason: err}, nopCloser{}
	}
	log.Info("blob storage ready", zap.String("backend", b.Name()))
	return b, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Unavailable is the backend used when no store is configured or reachable.
type Unavailable struct {
	Reason error
}

func (u Unavailable) err(op string) error {
	reason := u.Reason
	if reason == nil {
		reason = apperr.ErrNotConfigured
	}
	return apperr.New(apperr.KindStoreUnavailable, op, "", reason)
}

func (u Unavailable) List(context.Context, string) ([]string, error) { return nil, u.err("list") }
func (u Unavailable) Get(context.Context, string) ([]byte, error) { return nil, u.err("get") }
func (u Unavailable) Put(context.Context, string, []byte) error { return u.err("put") }
func (u Unavailable) Delete(context.Context, string) error { return u.err("delete") }
func (u Unavailable) Name() string { return "unavailable" }

// IsUnavailable reports whether b is the Unavailable placeholder.
func IsUnavailable(b Blobs) bool {
	_, ok := b.(Unavailable)
	return ok
}

func notFound(key string) error {
	return fmt.Errorf("%s: %w", key, apperr.ErrNotFound)
}
