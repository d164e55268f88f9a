package memory

import (
	"context"
	"errors"
	"testing"

	"quiz-client/internal/storage"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.Get(ctx, storage.KeyNickname); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Set(ctx, storage.KeyNickname, "Ada"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, storage.KeyNickname)
	if err != nil || got != "Ada" {
		t.Fatalf("expected Ada, got %q (%v)", got, err)
	}
	if err := store.Delete(ctx, storage.KeyNickname); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, storage.KeyNickname); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected key removed, got %v", err)
	}
	if err := store.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
