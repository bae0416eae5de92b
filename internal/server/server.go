// Package server assembles the HTTP pipeline: security headers, CORS, body
// decoding, observability and routing, always in that order.
package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/espaciohogar/platform/internal/apierror"
	"github.com/espaciohogar/platform/internal/resources"
)

// Options configures the pipeline.
type Options struct {
	// Security emits the security headers. Required.
	Security func(http.Handler) http.Handler

	// CORS is the origin allow-list.
	CORS CORSPolicy

	// BodyLimit caps decoded request bodies in bytes.
	BodyLimit int64

	// RequestTimeout is disabled when zero.
	RequestTimeout time.Duration

	Environment string
	StartedAt   time.Time
	ServiceName string

	Groups resources.Set

	// Assets holds the built frontend; nil disables static serving.
	Assets fs.FS

	Logger    *slog.Logger
	Formatter *apierror.Formatter
}

// Server is the assembled pipeline.
type Server struct {
	Router *chi.Mux

	logger      *slog.Logger
	environment string
	startedAt   time.Time
	groups      resources.Set
	assets      fs.FS
	clock       func() time.Time
}

// New builds the pipeline. It fails when no security middleware is given,
// since nothing may be served without the headers.
func New(opts Options) (*Server, error) {
	if opts.Security == nil {
		return nil, errors.New("server: security middleware is required")
	}
	if opts.BodyLimit <= 0 {
		return nil, errors.New("server: body limit must be positive")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Formatter == nil {
		opts.Formatter = apierror.NewFormatter(false, opts.Logger)
	}
	if opts.StartedAt.IsZero() {
		opts.StartedAt = time.Now()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "espacio-platform"
	}

	s := &Server{
		Router:      chi.NewRouter(),
		logger:      opts.Logger,
		environment: opts.Environment,
		startedAt:   opts.StartedAt,
		groups:      opts.Groups,
		assets:      opts.Assets,
	}
	r := s.Router

	// Apply middleware in order
	r.Use(opts.Security)
	r.Use(CORSMiddleware(opts.CORS, opts.Formatter))
	r.Use(BodyMiddleware(opts.BodyLimit, opts.Formatter))

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(opts.Logger))
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, opts.ServiceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}))
	})

	// Errors written past this point also land in the request log.
	funnel := *opts.Formatter
	funnel.OnError = func(r *http.Request, err error) {
		AddError(r.Context(), err)
		if opts.Formatter.OnError != nil {
			opts.Formatter.OnError(r, err)
		}
	}

	if opts.RequestTimeout > 0 {
		r.Use(TimeoutMiddleware(opts.RequestTimeout, &funnel))
	}

	r.Use(apierror.Middleware(&funnel))
	r.Use(middleware.GetHead)

	r.Get(HealthPath, s.handleHealth)
	r.Route(APIPrefix, s.mountAPI)
	r.NotFound(s.handleFrontend)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	if opts.Assets != nil && !assetExists(opts.Assets, "index.html") {
		opts.Logger.Warn("frontend index.html not found, client routes will 404")
	}

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
