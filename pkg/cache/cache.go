package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/logger"
	"go.uber.org/zap"
)

// Store is the subset of Redis operations the cache manager needs.
type Store interface {
	GetString(ctx context.Context, key string) (string, error)
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Manager handles caching operations with JSON serialization
type Manager struct {
	store Store
}

// NewManager creates a new cache manager
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	data, err := m.store.GetString(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), result)
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return m.store.SetWithExpiration(ctx, key, string(data), ttl)
}

// GetOrSet retrieves from cache or executes fn and caches the result
func (m *Manager) GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error {
	if err := m.Get(ctx, key, result); err == nil {
		return nil // Cache hit
	}

	data, err := fn()
	if err != nil {
		return err
	}

	// Cache the result without blocking the request
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.Set(cacheCtx, key, data, ttl); err != nil {
			logger.Warn("failed to cache key", zap.String("key", key), zap.Error(err))
		}
	}()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, result)
}

// Delete removes keys from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	return m.store.Delete(ctx, keys...)
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// MapFilters returns the cache key for heat-map filter options
func (k CacheKeys) MapFilters() string {
	return "map:filters"
}

// MapZones returns the cache key for zone geometry plus counts
func (k CacheKeys) MapZones() string {
	return "map:zones"
}

// DashboardStats returns the cache key for dashboard aggregates
func (k CacheKeys) DashboardStats() string {
	return "dashboard:stats"
}

// ZoneStats returns the cache key for per-zone statistics
func (k CacheKeys) ZoneStats(zone int) string {
	return fmt.Sprintf("risk:zone-stats:%d", zone)
}
