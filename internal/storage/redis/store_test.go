package redis

import (
	"context"
	"testing"
	"time"
)

func TestNewRejectsBadScheme(t *testing.T) {
	if _, err := New("http://localhost:6379"); err == nil {
		t.Fatal("expected non-redis scheme to fail")
	}
}

func TestPingUnreachable(t *testing.T) {
	store, err := New("redis://127.0.0.1:1/0")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err == nil {
		t.Fatal("expected ping against closed port to fail")
	}
}
