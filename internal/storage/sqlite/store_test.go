package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_Ping(t *testing.T) {
	store, err := New("file:pingdb?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if store.DB() == nil {
		t.Fatal("DB() returned nil")
	}
}

func TestStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "data", "espacio.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected parent directory: %v", err)
	}
}

func TestStore_PingAfterClose(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	store.Close()

	if err := store.Ping(context.Background()); err == nil {
		t.Fatal("expected ping on closed store to fail")
	}
}

func TestIsFilePath(t *testing.T) {
	tests := map[string]bool{
		"./data/espacio.db":  true,
		":memory:":           false,
		"file:x?mode=memory": false,
		"":                   false,
	}
	for in, want := range tests {
		if got := isFilePath(in); got != want {
			t.Errorf("isFilePath(%q) = %v, want %v", in, got, want)
		}
	}
}
