package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Environment: "production", Writer: &buf})

	logger.Info("server listening", slog.Int("port", 5000))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "server listening" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["port"] != float64(5000) {
		t.Errorf("port = %v", entry["port"])
	}
}

func TestNewDevelopmentUsesText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Environment: "development", Writer: &buf})

	logger.Info("server listening", slog.Int("port", 5000))

	out := buf.String()
	if !strings.Contains(out, "server listening") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("expected human readable output, got JSON %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Level: "warn", Writer: &buf})

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(Config{Format: "json", Writer: &buf}), "storage")
	logger.Info("ping")

	if !strings.Contains(buf.String(), `"component":"storage"`) {
		t.Fatalf("component attribute missing: %q", buf.String())
	}
}
