package cache

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CollectionReader is a read-through accessor for one cached collection.
// A hit returns the cached snapshot; a miss fetches the full authoritative
// collection (nested relations already expanded in the shape patch functions
// expect), fills the cache, and returns it. Partial data is never returned:
// fetch either yields the whole collection or the read fails.
type CollectionReader[T any] struct {
	store  *Store
	key    string
	fetch  func(ctx context.Context) ([]T, error)
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewCollectionReader[T any](
	store *Store,
	key string,
	fetch func(ctx context.Context) ([]T, error),
	logger ...*zap.Logger,
) *CollectionReader[T] {
	l := zap.L().Named("cache.reader")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cache.reader")
	}
	return &CollectionReader[T]{
		store:  store,
		key:    key,
		fetch:  fetch,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (r *CollectionReader[T]) Key() string {
	return r.key
}

func (r *CollectionReader[T]) Read(ctx context.Context) ([]T, error) {
	var cached []T
	found, err := r.store.Get(ctx, r.key, &cached)
	if err != nil {
		// A broken cache only costs latency; fall through to the source
		// of truth.
		r.logger.Warn("cache read failed, falling back to source",
			zap.String("key", r.key),
			zap.Error(err),
		)
	} else if found && len(cached) > 0 {
		return cached, nil
	}

	// Collapse a miss stampede into one source query.
	v, err, _ := r.sf.Do(r.key, func() (any, error) {
		rows, err := r.fetch(ctx)
		if err != nil {
			return nil, err
		}

		if err := r.store.Set(ctx, r.key, rows); err != nil {
			// The collection is complete either way; an unfilled cache
			// just means the next read fetches again.
			r.logger.Warn("cache fill failed",
				zap.String("key", r.key),
				zap.Error(err),
			)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}
