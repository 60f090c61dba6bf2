package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

func TestResourceKeyNormalizesQuery(t *testing.T) {
	a := resourceKey("  Python   Basics ")
	b := resourceKey("python basics")
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, resourceKeyPrefix) {
		t.Fatalf("key prefix: got=%q", a)
	}
	if resourceKey("python advanced") == a {
		t.Fatalf("distinct queries must not collide")
	}
}

func TestNewResourceCacheRequiresDeps(t *testing.T) {
	if _, err := NewResourceCache(nil, nil, 0); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewResourceCache(logger.NewNop(), nil, 0); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestResourceCacheRoundTripAgainstRedis(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("OY_REDIS_TEST_ADDR"))
	if addr == "" {
		t.Skip("set OY_REDIS_TEST_ADDR to run redis integration tests")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, ResourceCacheConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer rdb.Close()

	cache, err := NewResourceCache(logger.NewNop(), rdb, time.Minute)
	if err != nil {
		t.Fatalf("NewResourceCache: %v", err)
	}
	query := fmt.Sprintf("oyster it %d", time.Now().UnixNano())

	if _, found, err := cache.Get(ctx, query); err != nil || found {
		t.Fatalf("fresh key: found=%v err=%v", found, err)
	}
	want := []course.VideoResource{{Title: "Intro", URL: "https://www.youtube.com/watch?v=abc", Description: "d"}}
	if err := cache.Set(ctx, query, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found, err := cache.Get(ctx, strings.ToUpper(query))
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("resources: want=%+v got=%+v", want, got)
	}

	if err := cache.Set(ctx, query+" empty", nil); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	got, found, err = cache.Get(ctx, query+" empty")
	if err != nil || !found || got == nil || len(got) != 0 {
		t.Fatalf("empty result should be cached as []: found=%v got=%v err=%v", found, got, err)
	}
}
