package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryProvider_SetGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider, err := NewMemoryProvider(0)
	if err != nil {
		t.Fatalf("NewMemoryProvider: %v", err)
	}

	key := CatalogKey("v1")
	if _, err := provider.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := provider.Set(ctx, key, `{"attributes":[]}`, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := provider.Get(ctx, key)
	if err != nil || got != `{"attributes":[]}` {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	if err := provider.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := provider.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryProvider_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider, err := NewMemoryProvider(10)
	if err != nil {
		t.Fatalf("NewMemoryProvider: %v", err)
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }

	if err := provider.Set(ctx, "short", "a", time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := provider.Set(ctx, "forever", "b", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(time.Hour)

	if _, err := provider.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired entry, got %v", err)
	}
	if got, err := provider.Get(ctx, "forever"); err != nil || got != "b" {
		t.Fatalf("expected entry without ttl to survive, got %q, %v", got, err)
	}
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	if _, err := NewProvider(Config{Provider: "memory"}); err != nil {
		t.Fatalf("expected memory provider, got %v", err)
	}
	if _, err := NewProvider(Config{Provider: "memcached"}); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}
