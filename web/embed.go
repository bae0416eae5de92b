// Package web bundles the fallback frontend served when no build directory
// is configured.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

// distFiles bundles the placeholder frontend build.
//
//go:embed dist/*
var distFiles embed.FS

// Static returns a filesystem rooted at the bundled build.
func Static() (fs.FS, error) {
	return fs.Sub(distFiles, "dist")
}

// Assets returns the frontend build at dir, or the bundled one when dir is
// empty.
func Assets(dir string) (fs.FS, error) {
	if dir == "" {
		return Static()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("frontend dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frontend dir %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}
