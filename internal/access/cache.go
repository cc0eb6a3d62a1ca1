package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/amit1797/Eduadmin-sub000/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const (
	entitlementKeyPrefix = "eduadmin:entitlement:"

	DefaultEntitlementTTL = time.Minute
	DefaultPermissionTTL  = 5 * time.Minute
	DefaultPermissionSize = 512
)

// CachedEntitlementStore keeps entitlement answers in redis. Redis failures
// fall through to the backing store so an outage only costs latency.
type CachedEntitlementStore struct {
	next    EntitlementStore
	rdb     redis.UniversalClient
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewCachedEntitlementStore(next EntitlementStore, rdb redis.UniversalClient, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedEntitlementStore {
	if ttl <= 0 {
		ttl = DefaultEntitlementTTL
	}
	return &CachedEntitlementStore{next: next, rdb: rdb, ttl: ttl, metrics: metrics, logger: logger}
}

func entitlementKey(schoolID string, module Module) string {
	return fmt.Sprintf("%s%s:%s", entitlementKeyPrefix, schoolID, module)
}

func (s *CachedEntitlementStore) IsEnabled(ctx context.Context, schoolID string, module Module) (bool, error) {
	key := entitlementKey(schoolID, module)

	val, err := s.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		s.metrics.ObserveCacheLookup("entitlement", observability.CacheHit)
		return val == flag(true), nil
	case errors.Is(err, redis.Nil):
		s.metrics.ObserveCacheLookup("entitlement", observability.CacheMiss)
	default:
		s.metrics.ObserveCacheLookup("entitlement", observability.CacheError)
		s.logger.Warn("entitlement cache read failed", "key", key, "error", err)
		return s.next.IsEnabled(ctx, schoolID, module)
	}

	enabled, err := s.next.IsEnabled(ctx, schoolID, module)
	if err != nil {
		return false, err
	}

	// A fill never overwrites: a value loaded before a toggle must not
	// replace the one Refresh wrote after it.
	if err := s.rdb.SetNX(ctx, key, flag(enabled), s.ttl).Err(); err != nil {
		s.logger.Warn("entitlement cache write failed", "key", key, "error", err)
	}
	return enabled, nil
}

// Refresh stores a freshly committed flag for one school module. When the
// write fails the key is dropped so the next read goes to the database.
func (s *CachedEntitlementStore) Refresh(ctx context.Context, schoolID string, module Module, enabled bool) error {
	key := entitlementKey(schoolID, module)
	if err := s.rdb.Set(ctx, key, flag(enabled), s.ttl).Err(); err != nil {
		if delErr := s.rdb.Del(ctx, key).Err(); delErr != nil {
			return fmt.Errorf("refresh entitlement %s/%s: %w", schoolID, module, errors.Join(err, delErr))
		}
		return fmt.Errorf("refresh entitlement %s/%s: %w", schoolID, module, err)
	}
	return nil
}

func flag(enabled bool) string {
	if enabled {
		return "1"
	}
	return "0"
}

// CachedPermissionStore memoises matrix lookups in process. The matrix only
// changes through the seed command, so a short TTL is enough.
type CachedPermissionStore struct {
	next    PermissionStore
	cache   *lru.LRU[Grant, bool]
	metrics *observability.Metrics
}

func NewCachedPermissionStore(next PermissionStore, size int, ttl time.Duration, metrics *observability.Metrics) *CachedPermissionStore {
	if size <= 0 {
		size = DefaultPermissionSize
	}
	if ttl <= 0 {
		ttl = DefaultPermissionTTL
	}
	return &CachedPermissionStore{
		next:    next,
		cache:   lru.NewLRU[Grant, bool](size, nil, ttl),
		metrics: metrics,
	}
}

func (s *CachedPermissionStore) Allows(ctx context.Context, role identity.Role, module Module, permission Permission) (bool, error) {
	key := Grant{Role: role, Module: module, Permission: permission}
	if allowed, ok := s.cache.Get(key); ok {
		s.metrics.ObserveCacheLookup("permission", observability.CacheHit)
		return allowed, nil
	}
	s.metrics.ObserveCacheLookup("permission", observability.CacheMiss)

	allowed, err := s.next.Allows(ctx, role, module, permission)
	if err != nil {
		return false, err
	}
	s.cache.Add(key, allowed)
	return allowed, nil
}
