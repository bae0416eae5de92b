// Package runtime provides the App struct: the startup sequence that gates
// the listening socket on the data store and the security headers, and the
// lifecycle around it.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"github.com/espaciohogar/platform/internal/apierror"
	"github.com/espaciohogar/platform/internal/config"
	"github.com/espaciohogar/platform/internal/lifecycle"
	"github.com/espaciohogar/platform/internal/resources"
	"github.com/espaciohogar/platform/internal/security"
	"github.com/espaciohogar/platform/internal/server"
	"github.com/espaciohogar/platform/internal/storage"
	"github.com/espaciohogar/platform/web"
)

const defaultPingTimeout = 5 * time.Second

// App wires configuration, the data store and the HTTP pipeline together.
type App struct {
	// Dependencies (injected via options)
	cfg        *config.Config
	store      storage.Prober
	strategies []security.Strategy
	directives security.Directives
	groups     resources.Set
	assets     fs.FS
	logger     *slog.Logger

	startedAt time.Time
	addr      string
	signals   []os.Signal
	ready     func(net.Addr)

	// Security headers resolve once per App.
	securityOnce sync.Once
	securityMW   func(http.Handler) http.Handler
	securityErr  error
}

// New creates an App with the given options. A configuration is required.
// Without WithStore the stores named in the storage config are opened here;
// everything else has a default.
func New(opts ...Option) (*App, error) {
	a := &App{
		logger:     slog.Default(),
		directives: security.DefaultDirectives(),
		groups:     resources.Defaults(),
		startedAt:  time.Now(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if a.cfg == nil {
		return nil, errors.New("config required (use WithConfig or WithConfigFile)")
	}
	if len(a.signals) == 0 {
		a.signals = lifecycle.DefaultSignals()
	}

	if len(a.strategies) == 0 {
		if a.cfg.Security.PolicyFile != "" {
			a.strategies = append(a.strategies, security.File(a.cfg.Security.PolicyFile))
		}
		a.strategies = append(a.strategies, security.Builtin())
	}
	if a.addr == "" {
		a.addr = ":" + strconv.Itoa(a.cfg.Server.Port)
	}
	if a.assets == nil {
		assets, err := web.Assets(a.cfg.Frontend.Dir)
		if err != nil {
			a.logger.Warn("frontend dir unusable, serving bundled placeholder",
				slog.String("dir", a.cfg.Frontend.Dir),
				slog.String("error", err.Error()))
			if assets, err = web.Static(); err != nil {
				return nil, fmt.Errorf("load bundled frontend: %w", err)
			}
		}
		a.assets = assets
	}

	if a.store == nil {
		store, err := storage.Open(context.Background(), a.cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.store = store
	}

	return a, nil
}

// Prepare runs the startup sequence without binding a socket: it probes the
// store, installs the security headers and builds the pipeline. Any failure
// is returned and nothing is served.
func (a *App) Prepare(ctx context.Context) (*server.Server, error) {
	if err := a.probeStore(ctx); err != nil {
		return nil, err
	}

	secure, err := a.installSecurity(ctx)
	if err != nil {
		return nil, err
	}

	formatter := apierror.NewFormatter(a.cfg.IsDevelopment(), a.logger)
	return server.New(server.Options{
		Security:       secure,
		CORS:           server.NewCORSPolicy(a.cfg.CORS.Origin, server.DefaultOrigins...),
		BodyLimit:      a.cfg.Server.BodyLimit,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		Environment:    a.cfg.App.Env,
		StartedAt:      a.startedAt,
		ServiceName:    a.cfg.Telemetry.ServiceName,
		Groups:         a.groups,
		Assets:         a.assets,
		Logger:         a.logger,
		Formatter:      formatter,
	})
}

// Run prepares the pipeline and serves it until a shutdown signal or ctx
// cancellation. A signal or cancellation received while starting aborts the
// sequence and counts as a clean stop. The store is closed when Run returns.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	handler, err := a.Prepare(sigCtx)
	if err != nil {
		if sigCtx.Err() != nil {
			a.logger.Info("startup interrupted, shutting down", slog.String("reason", err.Error()))
			return nil
		}
		return err
	}

	coordinator := &lifecycle.Coordinator{
		Server: &http.Server{
			Addr:              a.addr,
			Handler:           handler,
			ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
			ReadTimeout:       a.cfg.Server.ReadTimeout,
		},
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		Signals:         a.signals,
		Logger:          a.logger,
		Ready: func(addr net.Addr) {
			a.logger.Info("server listening",
				slog.String("addr", addr.String()),
				slog.Int("port", portOf(addr)),
				slog.String("environment", a.cfg.App.Env),
				slog.String("health", server.HealthPath))
			if a.ready != nil {
				a.ready(addr)
			}
		},
	}

	if err := coordinator.Run(sigCtx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}

func (a *App) probeStore(ctx context.Context) error {
	timeout := a.cfg.Storage.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.store.Ping(pingCtx); err != nil {
		a.logger.Error("data store unreachable", slog.String("error", err.Error()))
		return fmt.Errorf("data store unreachable: %w", err)
	}
	a.logger.Info("data store reachable", slog.String("driver", a.cfg.Storage.Driver))
	return nil
}

// installSecurity resolves the header provider in the background and waits
// for it. The outcome of the first call is kept for the App's lifetime.
func (a *App) installSecurity(ctx context.Context) (func(http.Handler) http.Handler, error) {
	a.securityOnce.Do(func() {
		var mw func(http.Handler) http.Handler
		done := lifecycle.Go(a.logger, "security", func() error {
			installed, provider, err := security.Install(ctx, a.directives, a.strategies...)
			if err != nil {
				return err
			}
			mw = installed
			a.logger.Info("security headers installed", slog.String("provider", provider.Name()))
			return nil
		})

		select {
		case err := <-done:
			if err != nil {
				a.securityErr = fmt.Errorf("install security headers: %w", err)
				return
			}
			a.securityMW = mw
		case <-ctx.Done():
			a.securityErr = fmt.Errorf("install security headers: %w", ctx.Err())
		}
	})
	return a.securityMW, a.securityErr
}

func portOf(addr net.Addr) int {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}
