// Package cache wraps the redis client behind the small surface the rest of
// the service is allowed to use: get, set, delete, and a read-modify-write
// list append. Values are JSON. Errors always propagate; deciding whether to
// retry, invalidate, or ignore is the caller's job.
package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Get unmarshals the value at key into dest. Returns false with a nil error
// on a clean miss.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	// No TTL: entries live until a mutation patches or invalidates them.
	return s.rdb.Set(ctx, key, raw, 0).Err()
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// AppendToList reads the whole list at key, appends item, and rewrites it.
// This is not a server-side atomic append; concurrent appends race and the
// last writer wins, which the collection cache accepts because redis is
// always re-derivable from the database.
func (s *Store) AppendToList(ctx context.Context, key string, item any) error {
	var list []json.RawMessage
	if _, err := s.Get(ctx, key, &list); err != nil {
		return err
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	list = append(list, raw)
	return s.Set(ctx, key, list)
}
