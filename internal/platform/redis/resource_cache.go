package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

const (
	DefaultResourceCacheTTL = 24 * time.Hour
	resourceKeyPrefix       = "oy:resources:v1:"
)

// ResourceCache stores video search results per normalized query.
type ResourceCache interface {
	// Get reports found=false on a miss.
	Get(ctx context.Context, query string) (resources []course.VideoResource, found bool, err error)
	Set(ctx context.Context, query string, resources []course.VideoResource) error
}

type ResourceCacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type resourceCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

// NewClient dials and pings Redis.
func NewClient(ctx context.Context, cfg ResourceCacheConfig) (goredis.UniversalClient, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewResourceCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) (ResourceCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultResourceCacheTTL
	}
	return &resourceCache{
		log: log.With("service", "ResourceCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (c *resourceCache) Get(ctx context.Context, query string) ([]course.VideoResource, bool, error) {
	raw, err := c.rdb.Get(ctx, resourceKey(query)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var out []course.VideoResource
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode cached resources: %w", err)
	}
	if out == nil {
		out = []course.VideoResource{}
	}
	return out, true, nil
}

func (c *resourceCache) Set(ctx context.Context, query string, resources []course.VideoResource) error {
	if resources == nil {
		resources = []course.VideoResource{}
	}
	raw, err := json.Marshal(resources)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, resourceKey(query), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// NormalizeQuery lowercases and collapses whitespace.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func resourceKey(query string) string {
	sum := sha256.Sum256([]byte(NormalizeQuery(query)))
	return resourceKeyPrefix + hex.EncodeToString(sum[:])
}
