package memory

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_Ping(t *testing.T) {
	store := New()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Ping(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Ping() with cancelled ctx = %v", err)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	store := New()

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := store.Ping(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() = %v, want ErrClosed", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
