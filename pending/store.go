// Package pending is the review queue: one JSON record per item under
// "pending/<id>.json", so adding or removing an item never rewrites others.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"newsdesk/apperr"
	"newsdesk/logging"
	"newsdesk/storage"
	"newsdesk/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Prefix is the namespace holding pending records.
const Prefix = "pending/"

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Key returns the blob key for id.
func Key(id string) string { return Prefix + id + ".json" }

// Store reads and writes pending entries on a blob backend.
type Store struct {
	blobs       storage.Blobs
	concurrency int
	log         *zap.Logger
}

// NewStore builds a Store. concurrency bounds parallel reads during List.
func NewStore(blobs storage.Blobs, concurrency int, log *zap.Logger) *Store {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Store{blobs: blobs, concurrency: concurrency, log: logging.OrNop(log)}
}

// Available reports whether a real backend is configured.
func (s *Store) Available() bool { return !storage.IsUnavailable(s.blobs) }

// List returns every readable entry, newest first. Records that cannot be
// fetched or decoded are skipped and logged. An unreachable store yields an
// empty list.
func (s *Store) List(ctx context.Context) []types.PendingEntry {
	keys, err := s.blobs.List(ctx, Prefix)
	if err != nil {
		s.log.Warn("pending store unavailable; returning empty queue", zap.Error(err))
		return []types.PendingEntry{}
	}

	slots := make([]*types.PendingEntry, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		g.Go(func() error {
			e, err := s.read(gctx, key)
			if err != nil {
				s.log.Warn("skipping pending record", zap.String("key", key), zap.Error(err))
				return nil
			}
			slots[i] = &e
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]types.PendingEntry, 0, len(slots))
	for _, e := range slots {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := entries[i].RecencyTime(), entries[j].RecencyTime()
		if ti.Equal(tj) {
			return entries[i].ID < entries[j].ID
		}
		return ti.After(tj)
	})
	return entries
}

// Get returns one entry by id.
func (s *Store) Get(ctx context.Context, id string) (types.PendingEntry, error) {
	if err := checkID(id); err != nil {
		return types.PendingEntry{}, err
	}
	e, err := s.read(ctx, Key(id))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return types.PendingEntry{}, apperr.New(apperr.KindNotFound, "get pending", id, apperr.ErrNotFound)
		case apperr.KindOf(err) != apperr.KindUnknown:
			return types.PendingEntry{}, err
		default:
			return types.PendingEntry{}, apperr.New(apperr.KindStoreUnavailable, "get pending", id, err)
		}
	}
	return e, nil
}

// Put writes exactly one record. Existing records with other ids are untouched.
func (s *Store) Put(ctx context.Context, e types.PendingEntry) error {
	if err := checkID(e.ID); err != nil {
		return err
	}
	if e.Status == "" {
		e.Status = types.StatusPending
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal pending %s: %w", e.ID, err)
	}
	if err := s.blobs.Put(ctx, Key(e.ID), data); err != nil {
		if apperr.KindOf(err) == apperr.KindStoreUnavailable {
			return err
		}
		return apperr.New(apperr.KindStoreUnavailable, "put pending", e.ID, err)
	}
	return nil
}

// Delete removes one record. Deleting a missing id succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, Key(id)); err != nil {
		if apperr.KindOf(err) == apperr.KindStoreUnavailable {
			return err
		}
		return apperr.New(apperr.KindStoreUnavailable, "delete pending", id, err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, key string) (types.PendingEntry, error) {
	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		return types.PendingEntry{}, err
	}
	var e types.PendingEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return types.PendingEntry{}, apperr.New(apperr.KindUnparsableContent, "decode pending", key, err)
	}
	if e.ID == "" {
		return types.PendingEntry{}, apperr.New(apperr.KindUnparsableContent, "decode pending", key, errors.New("record has no id"))
	}
	return e, nil
}

func checkID(id string) error {
	if !validID.MatchString(id) {
		return apperr.New(apperr.KindInvalidInput, "pending", id, errors.New("invalid id"))
	}
	return nil
}
