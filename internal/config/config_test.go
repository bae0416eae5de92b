package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, pe := range plainEnv {
		t.Setenv(pe.name, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != DefaultPort {
			t.Errorf("port = %v, want %v", cfg.Server.Port, DefaultPort)
		}
		if cfg.App.Env != "development" {
			t.Errorf("env = %q, want development", cfg.App.Env)
		}
		if cfg.CORS.Origin != DefaultCORSOrigin {
			t.Errorf("cors origin = %q, want %q", cfg.CORS.Origin, DefaultCORSOrigin)
		}
		if cfg.Server.BodyLimit != 10<<20 {
			t.Errorf("body limit = %d, want %d", cfg.Server.BodyLimit, 10<<20)
		}
		if cfg.Server.ShutdownTimeout != 10*time.Second {
			t.Errorf("shutdown timeout = %v, want 10s", cfg.Server.ShutdownTimeout)
		}
		if cfg.Server.RequestTimeout != 0 {
			t.Errorf("request timeout = %v, want disabled", cfg.Server.RequestTimeout)
		}
		if cfg.Server.ReadTimeout != 0 {
			t.Errorf("read timeout = %v, want disabled so slow uploads are not cut", cfg.Server.ReadTimeout)
		}
		if cfg.Server.ReadHeaderTimeout != 10*time.Second {
			t.Errorf("read header timeout = %v, want 10s", cfg.Server.ReadHeaderTimeout)
		}
		if !cfg.IsDevelopment() {
			t.Error("expected development mode by default")
		}
	})

	t.Run("plain env overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "9000")
		t.Setenv("NODE_ENV", "staging")
		t.Setenv("APP_ENV", "production")
		t.Setenv("CORS_ORIGIN", "https://tienda.example")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 9000 {
			t.Errorf("port = %v, want 9000", cfg.Server.Port)
		}
		if cfg.App.Env != "production" {
			t.Errorf("env = %q, want production", cfg.App.Env)
		}
		if cfg.CORS.Origin != "https://tienda.example" {
			t.Errorf("cors origin = %q", cfg.CORS.Origin)
		}
	})

	t.Run("prefixed env wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "9000")
		t.Setenv("ESPACIO_SERVER__PORT", "9100")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 9100 {
			t.Errorf("port = %v, want 9100", cfg.Server.Port)
		}
	})

	t.Run("yaml file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
server:
  port: 7000
  shutdown_timeout: 0s
frontend:
  dir: ./public
storage:
  driver: postgres
  dsn: postgres://localhost/espacio
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 7000 {
			t.Errorf("port = %v, want 7000", cfg.Server.Port)
		}
		if cfg.Server.ShutdownTimeout != 0 {
			t.Errorf("shutdown timeout = %v, want 0", cfg.Server.ShutdownTimeout)
		}
		if cfg.Frontend.Dir != "./public" {
			t.Errorf("frontend dir = %q", cfg.Frontend.Dir)
		}
		if cfg.Storage.Driver != "postgres" {
			t.Errorf("driver = %q", cfg.Storage.Driver)
		}
	})

	t.Run("missing file is fine", func(t *testing.T) {
		clearEnv(t)
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "no body limit", mutate: func(c *Config) { c.Server.BodyLimit = 0 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				App:     AppConfig{Env: "test"},
				Server:  ServerConfig{Port: 8080, BodyLimit: DefaultBodyLimit},
				Storage: StorageConfig{Driver: "sqlite"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
