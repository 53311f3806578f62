package store

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/glossary/api/internal/model"
)

// Cache is the key-value subset of Redis the cached store needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CachedStore serves Load from a cache and invalidates it on Save.
// Cache failures are logged and otherwise ignored.
type CachedStore struct {
	inner  Store
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStore(inner Store, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

// CacheKey is the key under which the snapshot of a backend is cached.
func CacheKey(backend string) string {
	return "glossary:snapshot:" + backend
}

func (s *CachedStore) Name() string { return s.inner.Name() }

func (s *CachedStore) Load(ctx context.Context) (*Snapshot, error) {
	key := CacheKey(s.inner.Name())

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var snap Snapshot
		if err := json.Unmarshal(cached, &snap); err == nil {
			s.logger.Debug("glossary cache hit", zap.String("key", key))
			return &snap, nil
		}
	}

	snap, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("glossary cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return snap, nil
}

func (s *CachedStore) Save(ctx context.Context, records []model.Record, revision string, change Change) (string, error) {
	newRevision, err := s.inner.Save(ctx, records, revision, change)
	key := CacheKey(s.inner.Name())
	// invalidate on conflict too: the cached revision is what went stale
	if delErr := s.cache.Delete(ctx, key); delErr != nil {
		s.logger.Warn("glossary cache invalidation failed", zap.String("key", key), zap.Error(delErr))
	}
	return newRevision, err
}
