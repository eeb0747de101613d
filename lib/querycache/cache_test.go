package querycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type row struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, time.Minute, nil, nil), mr
}

func TestFetchLoadsOnceThenHits(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := ScopedKey(EntityAssignment, "p1")

	loads := 0
	load := func(context.Context) ([]row, error) {
		loads++
		return []row{{ID: "a1", Name: "Structural"}}, nil
	}

	for i := 0; i < 3; i++ {
		rows, err := Fetch(ctx, cache, key, load)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(rows) != 1 || rows[0].ID != "a1" {
			t.Fatalf("fetch %d: unexpected rows %+v", i, rows)
		}
	}
	if loads != 1 {
		t.Fatalf("expected a single backend load, got %d", loads)
	}
	if !mr.Exists("q:assignment:p1") {
		t.Fatal("expected result stored under q:assignment:p1")
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	cache, mr := newTestCache(t)
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), cache, ListKey(EntityProject), func(context.Context) ([]row, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if mr.Exists("q:project:") {
		t.Fatal("failed load must not be cached")
	}
}

func TestFetchFallsBackWhenRedisIsDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	rows, err := Fetch(context.Background(), cache, ListKey(EntityConsultant), func(context.Context) ([]row, error) {
		return []row{{ID: "c1"}}, nil
	})
	if err != nil {
		t.Fatalf("expected fallback to backend, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestNilCacheIsPassThrough(t *testing.T) {
	var cache *Cache
	loads := 0
	for i := 0; i < 2; i++ {
		_, _ = Fetch(context.Background(), cache, ListKey(EntityProject), func(context.Context) (int, error) {
			loads++
			return loads, nil
		})
	}
	if loads != 2 {
		t.Fatalf("expected every fetch to load, got %d", loads)
	}
	if cache.Invalidate(context.Background(), Change{Entity: EntityProject}) != 0 {
		t.Fatal("nil cache should invalidate nothing")
	}
}

func TestPatchKeepsTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := ScopedKey(EntityAssignment, "p1")

	if _, err := Fetch(ctx, cache, key, func(context.Context) ([]row, error) {
		return []row{{ID: "a1"}}, nil
	}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(20 * time.Second)
	before := mr.TTL(key.String())

	Patch(ctx, cache, key, func(rows []row) []row {
		return append(rows, row{ID: "a2"})
	})

	rows, err := Fetch(ctx, cache, key, func(context.Context) ([]row, error) {
		t.Fatal("patched entry should be served from cache")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].ID != "a2" {
		t.Fatalf("patch not applied: %+v", rows)
	}
	if after := mr.TTL(key.String()); after > before {
		t.Fatalf("patch extended ttl from %v to %v", before, after)
	}
}

func TestPatchMissingKeyIsNoop(t *testing.T) {
	cache, mr := newTestCache(t)
	Patch(context.Background(), cache, ListKey(EntityProject), func(rows []row) []row {
		return append(rows, row{ID: "x"})
	})
	if mr.Exists("q:project:") {
		t.Fatal("patch must not create entries")
	}
}

func TestInvalidateAssignmentChange(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{
		"q:assignment:p1",
		"q:assignment:p2",
		"q:consultant_assignment:c1",
		"q:invoice:a1",
		"q:task:a1",
		"q:project:",
	} {
		if err := mr.Set(k, "[]"); err != nil {
			t.Fatal(err)
		}
	}

	removed := cache.Invalidate(ctx, Change{
		Entity: EntityAssignment,
		Action: ActionDelete,
		ID:     "a1",
		Parents: map[Entity]string{
			EntityProject:    "p1",
			EntityConsultant: "c1",
		},
	})
	if removed != 4 {
		t.Fatalf("expected 4 keys removed, got %d", removed)
	}
	for _, gone := range []string{"q:assignment:p1", "q:consultant_assignment:c1", "q:invoice:a1", "q:task:a1"} {
		if mr.Exists(gone) {
			t.Errorf("%s should have been invalidated", gone)
		}
	}
	for _, kept := range []string{"q:assignment:p2", "q:project:"} {
		if !mr.Exists(kept) {
			t.Errorf("%s should have been kept", kept)
		}
	}
}

func TestInvalidateScopeAllUsesPattern(t *testing.T) {
	cache, mr := newTestCache(t)
	for _, k := range []string{"q:consultant:", "q:consultant:c1", "q:consultant:c2", "q:consultant_group:"} {
		if err := mr.Set(k, "[]"); err != nil {
			t.Fatal(err)
		}
	}

	cache.Invalidate(context.Background(), Change{Entity: EntityConsultantGroup, Action: ActionUpdate, ID: "g1"})

	for _, k := range []string{"q:consultant:", "q:consultant:c1", "q:consultant:c2", "q:consultant_group:"} {
		if mr.Exists(k) {
			t.Errorf("%s should have been invalidated", k)
		}
	}
}
