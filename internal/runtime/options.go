package runtime

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/espaciohogar/platform/internal/config"
	"github.com/espaciohogar/platform/internal/resources"
	"github.com/espaciohogar/platform/internal/security"
	"github.com/espaciohogar/platform/internal/storage"
)

// Option is a functional option for configuring an App.
type Option func(*App) error

// WithConfig uses an already loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}
}

// WithConfigFile loads configuration from a YAML file plus the environment.
func WithConfigFile(path string) Option {
	return func(a *App) error {
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
		return nil
	}
}

// WithStore sets the data store whose reachability gates startup. Without
// it, New opens the stores named by the storage config. The App closes the
// store when Run returns.
func WithStore(store storage.Prober) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSecurityStrategies replaces the provider resolution order.
func WithSecurityStrategies(strategies ...security.Strategy) Option {
	return func(a *App) error {
		if len(strategies) == 0 {
			return fmt.Errorf("at least one security strategy is required")
		}
		a.strategies = strategies
		return nil
	}
}

// WithDirectives replaces the content security policy directives.
func WithDirectives(directives security.Directives) Option {
	return func(a *App) error {
		if err := directives.Validate(); err != nil {
			return fmt.Errorf("invalid directives: %w", err)
		}
		a.directives = directives
		return nil
	}
}

// WithGroups sets the resource handler groups mounted under /api.
func WithGroups(groups resources.Set) Option {
	return func(a *App) error {
		a.groups = groups
		return nil
	}
}

// WithAssets serves the frontend from fsys instead of the configured dir.
func WithAssets(fsys fs.FS) Option {
	return func(a *App) error {
		a.assets = fsys
		return nil
	}
}

// WithStartTime sets the instant uptime is measured from.
func WithStartTime(t time.Time) Option {
	return func(a *App) error {
		a.startedAt = t
		return nil
	}
}

// WithReadyHook is called with the bound address once the socket listens.
func WithReadyHook(fn func(addr net.Addr)) Option {
	return func(a *App) error {
		a.ready = fn
		return nil
	}
}

// WithSignals replaces the shutdown signals.
func WithSignals(signals ...os.Signal) Option {
	return func(a *App) error {
		a.signals = signals
		return nil
	}
}

// WithAddr overrides the listen address derived from server.port.
func WithAddr(addr string) Option {
	return func(a *App) error {
		a.addr = addr
		return nil
	}
}
