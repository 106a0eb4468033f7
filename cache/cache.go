package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"schema-generator/config"
	"schema-generator/internal/schema"
)

// Store persists cache entries by key
type Store interface {
	Load(ctx context.Context, key string) (*Entry, error)
	Save(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Entry represents a cached schema result
type Entry struct {
	Key       string          `json:"key"`
	Model     string          `json:"model"`
	Timestamp time.Time       `json:"timestamp"`
	Result    json.RawMessage `json:"result"`
}

// Cache handles caching of parsed schemas keyed by model and requirement
type Cache struct {
	store Store
	ttl   time.Duration
}

// New creates a cache over the given store
func New(store Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

// NewFromConfig builds the cache selected by the configuration. It returns
// nil when caching is disabled.
func NewFromConfig(cfg *config.Config) (*Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case "file", "":
		return New(NewFileStore(cfg.Cache.Directory), cfg.GetCacheTTL()), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		return New(NewRedisStore(rdb), cfg.GetCacheTTL()), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// GetSchema retrieves a cached schema if available and valid
func (c *Cache) GetSchema(ctx context.Context, model, requirement string) (*schema.Schema, bool) {
	key := Key(model, requirement)

	entry, err := c.store.Load(ctx, key)
	if err != nil || entry == nil {
		return nil, false
	}

	// Check if key matches and entry is not expired
	if entry.Key != key || c.isExpired(entry.Timestamp) {
		return nil, false
	}

	var cached schema.Schema
	if err := json.Unmarshal(entry.Result, &cached); err != nil {
		return nil, false
	}

	return &cached, true
}

// SetSchema caches a schema. Schemas that failed to parse are not cached.
func (c *Cache) SetSchema(ctx context.Context, model, requirement string, s *schema.Schema) error {
	if s == nil || !s.ParsedSuccessfully {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	key := Key(model, requirement)
	entry := Entry{
		Key:       key,
		Model:     model,
		Timestamp: time.Now(),
		Result:    data,
	}

	return c.store.Save(ctx, key, entry, c.ttl)
}

// ClearCache removes all cached entries
func (c *Cache) ClearCache(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Key derives the cache key for a model and requirement. Requirements that
// differ only in case or surrounding whitespace share a key.
func Key(model, requirement string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(requirement), " "))
	return hashContent(model + "\n" + normalized)
}

// hashContent creates a hash of content for cache key
func hashContent(content string) string {
	hash := md5.Sum([]byte(content))
	return fmt.Sprintf("%x", hash)
}

// isExpired checks if cache entry is expired
func (c *Cache) isExpired(timestamp time.Time) bool {
	return c.ttl > 0 && time.Since(timestamp) > c.ttl
}
