package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func projectedAt(place string) snapshot.Snapshot {
	s := snapshot.New()
	s.Location.Place = place
	s.Location.Props = s.Location.Props.Add("menu")
	return s
}

func TestCachePutGet(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)

	if _, ok, err := cache.Get(ctx, "chat-1", 3); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Put(ctx, "chat-1", 3, projectedAt("Cafe")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	loaded, ok, err := cache.Get(ctx, "chat-1", 3)
	if err != nil || !ok {
		t.Fatalf("Get ok=%v err=%v", ok, err)
	}
	if loaded.Location.Place != "Cafe" || !loaded.Location.Props.Contains("menu") {
		t.Fatalf("loaded = %+v", loaded.Location)
	}

	// Entries are keyed per chat.
	if _, ok, _ := cache.Get(ctx, "chat-2", 3); ok {
		t.Fatal("entry leaked across chats")
	}
}

func TestCacheInvalidateFrom(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)

	for messageID, place := range map[int]string{2: "Cafe", 5: "Bookshop", 9: "Harbor"} {
		if err := cache.Put(ctx, "chat-1", messageID, projectedAt(place)); err != nil {
			t.Fatalf("Put returned error: %v", err)
		}
	}
	if err := cache.Put(ctx, "other", 7, projectedAt("Elsewhere")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := cache.InvalidateFrom(ctx, "chat-1", 5); err != nil {
		t.Fatalf("InvalidateFrom returned error: %v", err)
	}

	if _, ok, _ := cache.Get(ctx, "chat-1", 2); !ok {
		t.Fatal("entry before the invalidation point should survive")
	}
	for _, messageID := range []int{5, 9} {
		if _, ok, _ := cache.Get(ctx, "chat-1", messageID); ok {
			t.Fatalf("entry at message %d should be invalidated", messageID)
		}
	}
	if _, ok, _ := cache.Get(ctx, "other", 7); !ok {
		t.Fatal("other chats should be untouched")
	}
}

func TestCacheRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)

	if err := cache.Put(ctx, "", 0, snapshot.New()); err == nil {
		t.Fatal("expected error for empty chat id")
	}
	if err := cache.Put(ctx, "chat-1", -1, snapshot.New()); err == nil {
		t.Fatal("expected error for negative message id")
	}
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
