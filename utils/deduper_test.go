package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestDeduperAcquireOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	d := NewDeduper(rdb, time.Minute, nil)
	ctx := context.Background()

	if !d.AcquireOnce(ctx, "user-1", "abc") {
		t.Fatal("first submission should be allowed")
	}
	if d.AcquireOnce(ctx, "user-1", "abc") {
		t.Fatal("duplicate submission should be rejected")
	}
	if !d.AcquireOnce(ctx, "user-2", "abc") {
		t.Fatal("same key from another scope should be allowed")
	}

	mr.FastForward(2 * time.Minute)
	if !d.AcquireOnce(ctx, "user-1", "abc") {
		t.Fatal("lock should expire after ttl")
	}
}

func TestDeduperFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	d := NewDeduper(rdb, time.Minute, nil)
	if !d.AcquireOnce(context.Background(), "user-1", "abc") {
		t.Fatal("redis failure should allow the request")
	}

	var nilDeduper *Deduper
	if !nilDeduper.AcquireOnce(context.Background(), "user-1", "abc") {
		t.Fatal("nil deduper should allow the request")
	}
}
