package filingconfig

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// CachedStore is a read-through Redis cache in front of another Store.
// Redis failures degrade to reading the backing store.
type CachedStore struct {
	next   Store
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps next with a Redis cache. A zero ttl uses the default.
func NewCached(next Store, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(key Key) string {
	return "efile:filing_config:" + key.String()
}

func (s *CachedStore) Get(ctx context.Context, key Key) (string, error) {
	ck := cacheKey(key)
	value, err := s.client.Get(ctx, ck).Result()
	switch {
	case err == nil:
		return value, nil
	case !errors.Is(err, redis.Nil):
		s.logger.WarnContext(ctx, "config cache read failed", "key", ck, "error", err)
	}

	value, err = s.next.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, ck, value, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "config cache write failed", "key", ck, "error", err)
	}
	return value, nil
}

func (s *CachedStore) Put(ctx context.Context, entry Entry) error {
	if err := s.next.Put(ctx, entry); err != nil {
		return err
	}
	if err := s.client.Del(ctx, cacheKey(entry.Key)).Err(); err != nil {
		s.logger.WarnContext(ctx, "config cache invalidation failed", "key", entry.Key.String(), "error", err)
	}
	return nil
}
