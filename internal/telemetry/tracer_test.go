package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracerDisabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := InitTracer(Config{Enabled: false}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Error("disabled tracing must not replace the global provider")
	}
}

func TestInitTracerEnabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer(Config{
		Enabled:     true,
		ServiceName: "espacio-test",
		Environment: "test",
		Writer:      &buf,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "probe")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("probe")) {
		t.Errorf("expected exported span, got %q", buf.String())
	}
}
