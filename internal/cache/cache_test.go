package cache_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/cache"
)

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	c := cache.New(nil, time.Minute, zerolog.New(io.Discard))
	ctx := context.Background()

	var dest []string
	if c.Get(ctx, "products:carousel", &dest) {
		t.Fatalf("disabled cache must miss")
	}

	// Set and Invalidate are no-ops, never panics.
	c.Set(ctx, "products:carousel", []string{"a"})
	c.Invalidate(ctx, "products:carousel")

	if c.Get(ctx, "products:carousel", &dest) {
		t.Fatalf("disabled cache must stay empty")
	}

	stats := c.Stats()
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Fatalf("disabled cache must not count: %+v", stats)
	}
}
