// Package lifecycle owns the listening socket and the process-level fault
// handling: signal-driven shutdown, background task supervision and the
// top-level panic trap.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds connection draining after a signal.
const DefaultShutdownTimeout = 10 * time.Second

// DefaultSignals are the termination signals handled when none are given.
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// Coordinator binds the server socket and stops it on a termination signal
// or when the run context is cancelled.
type Coordinator struct {
	Server *http.Server

	// ShutdownTimeout bounds draining of in-flight requests. Zero closes
	// every connection immediately.
	ShutdownTimeout time.Duration

	// Signals defaults to SIGINT and SIGTERM.
	Signals []os.Signal

	Logger *slog.Logger

	// Ready is called once the socket is bound.
	Ready func(addr net.Addr)
}

// Run binds Server.Addr and serves until a signal arrives, ctx is
// cancelled or the server fails. A signal-initiated stop returns nil.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.Server == nil {
		return errors.New("lifecycle: server is required")
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	signals := c.Signals
	if len(signals) == 0 {
		signals = DefaultSignals()
	}

	ln, err := net.Listen("tcp", c.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", c.Server.Addr, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	g, gctx := errgroup.WithContext(ctx)
	served, stopWaiting := context.WithCancel(gctx)
	defer stopWaiting()

	g.Go(func() error {
		defer stopWaiting()
		if err := c.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	if c.Ready != nil {
		c.Ready(ln.Addr())
	}

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		case <-served.Done():
			if ctx.Err() != nil {
				logger.Info("shutdown requested", slog.String("reason", ctx.Err().Error()))
			}
		}
		return c.shutdown(logger)
	})

	return g.Wait()
}

func (c *Coordinator) shutdown(logger *slog.Logger) error {
	if c.ShutdownTimeout <= 0 {
		logger.Info("closing server immediately")
		if err := c.Server.Close(); err != nil {
			return fmt.Errorf("close server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	if err := c.Server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown incomplete, closing remaining connections",
			slog.Duration("timeout", c.ShutdownTimeout),
			slog.String("error", err.Error()))
		if err := c.Server.Close(); err != nil {
			return fmt.Errorf("close server: %w", err)
		}
		return nil
	}

	logger.Info("server drained")
	return nil
}
