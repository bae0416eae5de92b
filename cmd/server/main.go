package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/espaciohogar/platform/internal/config"
	"github.com/espaciohogar/platform/internal/lifecycle"
	"github.com/espaciohogar/platform/internal/logging"
	"github.com/espaciohogar/platform/internal/runtime"
	"github.com/espaciohogar/platform/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Init(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Environment: cfg.App.Env,
	})
	defer lifecycle.Trap(logger)

	ctx, stop := signal.NotifyContext(context.Background(), lifecycle.DefaultSignals()...)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdown, err := telemetry.InitTracer(telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.App.Env,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	app, err := runtime.New(
		runtime.WithConfig(cfg),
		runtime.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	return app.Run(ctx)
}
