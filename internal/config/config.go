package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultPort        = 5000
	DefaultEnvironment = "development"
	DefaultCORSOrigin  = "http://localhost:3000"
	DefaultBodyLimit   = 10 << 20

	envPrefix = "ESPACIO_"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	CORS      CORSConfig      `koanf:"cors"`
	Storage   StorageConfig   `koanf:"storage"`
	Frontend  FrontendConfig  `koanf:"frontend"`
	Security  SecurityConfig  `koanf:"security"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type AppConfig struct {
	Env string `koanf:"env"` // development, production, test
}

type ServerConfig struct {
	Port              int           `koanf:"port"`
	BodyLimit         int64         `koanf:"body_limit"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`  // 0 disables the per-request deadline
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"` // 0 closes connections immediately
	ReadTimeout       time.Duration `koanf:"read_timeout"`     // whole request including body; 0 disables
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
}

type CORSConfig struct {
	Origin string `koanf:"origin"`
}

type StorageConfig struct {
	Driver      string        `koanf:"driver"` // sqlite, postgres, redis, memory
	DSN         string        `koanf:"dsn"`
	RedisURL    string        `koanf:"redis_url"` // Optional cache that must also be reachable
	PingTimeout time.Duration `koanf:"ping_timeout"`
}

type FrontendConfig struct {
	// Dir is the prebuilt frontend bundle. Empty serves the embedded bundle.
	Dir string `koanf:"dir"`
}

type SecurityConfig struct {
	PolicyFile string `koanf:"policy_file"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development")
}

// plainEnv maps conventional deployment variables onto config keys. Later
// entries win, so APP_ENV overrides NODE_ENV when both are present.
var plainEnv = []struct {
	name string
	key  string
}{
	{"PORT", "server.port"},
	{"NODE_ENV", "app.env"},
	{"APP_ENV", "app.env"},
	{"CORS_ORIGIN", "cors.origin"},
	{"DATABASE_DRIVER", "storage.driver"},
	{"DATABASE_URL", "storage.dsn"},
	{"REDIS_URL", "storage.redis_url"},
	{"FRONTEND_DIR", "frontend.dir"},
	{"SECURITY_POLICY_FILE", "security.policy_file"},
	{"LOG_LEVEL", "log.level"},
	{"LOG_FORMAT", "log.format"},
}

// Load reads configuration from defaults, the optional YAML file at path,
// conventional environment variables and finally ESPACIO_ prefixed
// variables (ESPACIO_SERVER__PORT=8080). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	setDefaults(k)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	for _, pe := range plainEnv {
		if v, ok := os.LookupEnv(pe.name); ok && strings.TrimSpace(v) != "" {
			if err := k.Set(pe.key, strings.TrimSpace(v)); err != nil {
				return nil, fmt.Errorf("apply %s: %w", pe.name, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	defaults := map[string]interface{}{
		"app.env":                    DefaultEnvironment,
		"server.port":                DefaultPort,
		"server.body_limit":          DefaultBodyLimit,
		"server.request_timeout":     "0s",
		"server.shutdown_timeout":    "10s",
		"server.read_timeout":        "0s",
		"server.read_header_timeout": "10s",
		"cors.origin":                DefaultCORSOrigin,
		"storage.driver":             "sqlite",
		"storage.dsn":                "./data/espacio.db",
		"storage.ping_timeout":       "5s",
		"log.level":                  "info",
		"telemetry.service_name":     "espacio-platform",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
}

// Validate checks values that would otherwise fail late during startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.body_limit must be positive"))
	}
	if c.Server.RequestTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server timeouts must not be negative"))
	}
	if strings.TrimSpace(c.App.Env) == "" {
		c.App.Env = DefaultEnvironment
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite", "postgres", "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported", c.Storage.Driver))
	}
	return errors.Join(errs...)
}
