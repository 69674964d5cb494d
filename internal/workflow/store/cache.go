package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"civicdesk/internal/platform/redis"
	"civicdesk/internal/workflow/models"
)

// CachedDefinitionStore is a read-through cache in front of a
// DefinitionStore. Definitions change rarely and are read on every dispatch,
// so a short TTL removes most definition lookups from the hot path. Cache
// failures degrade to the inner store and are only logged.
type CachedDefinitionStore struct {
	inner  DefinitionStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedDefinitionStore(inner DefinitionStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDefinitionStore {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedDefinitionStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(moduleType string) string {
	return "workflow:definition:" + moduleType
}

func (s *CachedDefinitionStore) GetByModuleType(ctx context.Context, moduleType string) (*models.Definition, error) {
	key := cacheKey(moduleType)

	payload, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var d models.Definition
		if err := json.Unmarshal(payload, &d); err == nil {
			return &d, nil
		}
		// Unreadable entry, drop it and fall through.
		s.client.Del(ctx, key)
	} else if !errors.Is(err, goredis.Nil) {
		s.logger.Warn("workflow cache read failed", "module_type", moduleType, "error", err)
	}

	d, err := s.inner.GetByModuleType(ctx, moduleType)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(d); err == nil {
		if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			s.logger.Warn("workflow cache write failed", "module_type", moduleType, "error", err)
		}
	}
	return d, nil
}

func (s *CachedDefinitionStore) Upsert(ctx context.Context, d *models.Definition) error {
	if err := s.inner.Upsert(ctx, d); err != nil {
		return err
	}
	s.invalidate(ctx, d.ModuleType)
	return nil
}

func (s *CachedDefinitionStore) Delete(ctx context.Context, moduleType string) error {
	if err := s.inner.Delete(ctx, moduleType); err != nil {
		return err
	}
	s.invalidate(ctx, moduleType)
	return nil
}

// List always hits the inner store; listing is an admin operation.
func (s *CachedDefinitionStore) List(ctx context.Context) ([]*models.Definition, error) {
	return s.inner.List(ctx)
}

func (s *CachedDefinitionStore) invalidate(ctx context.Context, moduleType string) {
	if err := s.client.Del(ctx, cacheKey(moduleType)).Err(); err != nil {
		s.logger.Warn("workflow cache invalidation failed", "module_type", moduleType, "error", err)
	}
}
