// Package storage opens the backing data stores and exposes the single
// reachability probe the startup sequence depends on.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/espaciohogar/platform/internal/config"
	"github.com/espaciohogar/platform/internal/storage/memory"
	"github.com/espaciohogar/platform/internal/storage/postgres"
	"github.com/espaciohogar/platform/internal/storage/redis"
	"github.com/espaciohogar/platform/internal/storage/sqlite"
)

// Prober is the data-store collaborator: any Ping failure is fatal to startup.
type Prober interface {
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Prober = (*memory.Store)(nil)
	_ Prober = (*sqlite.Store)(nil)
	_ Prober = (*postgres.Store)(nil)
	_ Prober = (*redis.Store)(nil)
)

// Named attaches a label used in probe errors and logs.
type Named struct {
	Name string
	Prober
}

// Set probes every member and reports all failures together.
type Set []Named

func (s Set) Ping(ctx context.Context) error {
	var errs []error
	for _, member := range s {
		if err := member.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", member.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (s Set) Close() error {
	var errs []error
	for i := len(s) - 1; i >= 0; i-- {
		if err := s[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s[i].Name, err))
		}
	}
	return errors.Join(errs...)
}

// Open creates the configured primary store plus the optional Redis cache.
// Drivers connect lazily; reachability is only established by Ping.
func Open(ctx context.Context, cfg config.StorageConfig) (Set, error) {
	var set Set

	primary, err := openDriver(ctx, strings.ToLower(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, err
	}
	set = append(set, Named{Name: strings.ToLower(cfg.Driver), Prober: primary})

	if cfg.RedisURL != "" && !strings.EqualFold(cfg.Driver, "redis") {
		cache, err := redis.New(cfg.RedisURL)
		if err != nil {
			set.Close()
			return nil, err
		}
		set = append(set, Named{Name: "redis", Prober: cache})
	}

	return set, nil
}

func openDriver(ctx context.Context, driver, dsn string) (Prober, error) {
	switch driver {
	case "sqlite", "":
		return sqlite.New(dsn)
	case "postgres":
		return postgres.New(ctx, dsn)
	case "redis":
		return redis.New(dsn)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
