package web

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStaticHasIndex(t *testing.T) {
	fsys, err := Static()
	if err != nil {
		t.Fatalf("Static() error = %v", err)
	}
	data, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if !strings.Contains(string(data), `<div id="root">`) {
		t.Errorf("index.html missing root element")
	}
}

func TestAssetsDefaultsToBundle(t *testing.T) {
	fsys, err := Assets("")
	if err != nil {
		t.Fatalf("Assets() error = %v", err)
	}
	if _, err := fs.Stat(fsys, "index.html"); err != nil {
		t.Errorf("bundled index.html missing: %v", err)
	}
}

func TestAssetsFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("build"), 0o644); err != nil {
		t.Fatal(err)
	}

	fsys, err := Assets(dir)
	if err != nil {
		t.Fatalf("Assets() error = %v", err)
	}
	data, err := fs.ReadFile(fsys, "index.html")
	if err != nil || string(data) != "build" {
		t.Errorf("index.html = %q, %v", data, err)
	}
}

func TestAssetsMissingDir(t *testing.T) {
	if _, err := Assets(filepath.Join(t.TempDir(), "nada")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestAssetsNotDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Assets(file); err == nil {
		t.Fatal("expected error for file path")
	}
}
