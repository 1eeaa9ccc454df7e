package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CacheStats counts cache outcomes.
type CacheStats struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
	Errors        uint64 `json:"errors"`
}

// CachedStore puts a Redis read-through cache in front of another store.
//
// Only single-task reads are cached. Every write goes to the inner store first
// and then drops the cached entry, so the cache never holds a version newer
// than the store. A fill that overlaps an invalidation is discarded, since
// the row it read may predate that write. A stale entry can at worst make a
// later update fail its version check.
type CachedStore struct {
	inner  domain.Store
	client *redis.Client
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	logger types.Logger

	// gen is bumped before every invalidation.
	gen atomic.Uint64

	hits, misses, invalidations, errs atomic.Uint64
}

var _ domain.Store = (*CachedStore)(nil)

// NewCachedStore wraps inner with a cache held in client.
func NewCachedStore(inner domain.Store, client *redis.Client, ttl time.Duration, logger types.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		client: client,
		prefix: "task:",
		ttl:    ttl,
		logger: logger,
	}
}

func (s *CachedStore) key(id string) string {
	return s.prefix + id
}

// FindByID serves from Redis when possible. Concurrent misses for the same id
// share one load from the inner store.
func (s *CachedStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == nil {
		var t domain.Task
		if err := json.Unmarshal(data, &t); err == nil {
			s.hits.Add(1)
			return &t, nil
		}
		s.errs.Add(1)
	} else if !errors.Is(err, redis.Nil) {
		s.errs.Add(1)
		s.logger.Warn("Cache read failed, falling back to store", "id", id, "error", err)
	}
	s.misses.Add(1)

	v, err, _ := s.group.Do(id, func() (any, error) {
		gen := s.gen.Load()
		t, err := s.inner.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.fill(ctx, id, t, gen)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	t := *v.(*domain.Task)
	return &t, nil
}

// fill caches t unless an invalidation started after gen was read. The
// second check catches an invalidation whose delete ran before the set.
func (s *CachedStore) fill(ctx context.Context, id string, t *domain.Task, gen uint64) {
	if s.gen.Load() != gen {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		s.errs.Add(1)
		s.logger.Warn("Cache write failed", "id", id, "error", err)
		return
	}
	if s.gen.Load() != gen {
		s.invalidate(ctx, id)
	}
}

// FindAll always reads the inner store.
func (s *CachedStore) FindAll(ctx context.Context, filter domain.Filter, page domain.PageRequest) (domain.Page, error) {
	return s.inner.FindAll(ctx, filter, page)
}

// Insert writes through. New ids are never cached yet.
func (s *CachedStore) Insert(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	return s.inner.Insert(ctx, t)
}

// ConditionalUpdate writes through and drops the cached copy.
func (s *CachedStore) ConditionalUpdate(ctx context.Context, t *domain.Task, expectedVersion int64) (*domain.Task, error) {
	out, err := s.inner.ConditionalUpdate(ctx, t, expectedVersion)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			s.invalidate(ctx, t.ID)
		}
		return nil, err
	}
	s.invalidate(ctx, t.ID)
	return out, nil
}

// ExistsByID always reads the inner store.
func (s *CachedStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.inner.ExistsByID(ctx, id)
}

// DeleteByID deletes through and drops the cached copy.
func (s *CachedStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	deleted, err := s.inner.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, id)
	return deleted, nil
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	s.gen.Add(1)
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		s.errs.Add(1)
		s.logger.Warn("Cache invalidation failed", "id", id, "error", err)
		return
	}
	s.invalidations.Add(1)
}

// Stats returns a snapshot of the counters.
func (s *CachedStore) Stats() CacheStats {
	return CacheStats{
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		Invalidations: s.invalidations.Load(),
		Errors:        s.errs.Load(),
	}
}

// Close closes the Redis client and the inner store.
func (s *CachedStore) Close() error {
	cerr := s.client.Close()
	if err := s.inner.Close(); err != nil {
		return err
	}
	if cerr != nil {
		return fmt.Errorf("failed to close redis client: %w", cerr)
	}
	return nil
}
