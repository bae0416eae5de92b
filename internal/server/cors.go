package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/espaciohogar/platform/internal/apierror"
)

// DefaultOrigins are always allowed in addition to the configured origin.
var DefaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"https://espaciohogar.app",
}

const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// CORSPolicy is an exact-match origin allow-list. It is immutable once built.
type CORSPolicy struct {
	origins []string
	allowed map[string]struct{}
}

// NewCORSPolicy builds the allow-list from the configured origin followed by
// the fixed ones. Blank entries are dropped and duplicates collapse.
func NewCORSPolicy(configured string, fixed ...string) CORSPolicy {
	policy := CORSPolicy{allowed: make(map[string]struct{})}
	for _, origin := range append([]string{configured}, fixed...) {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if _, dup := policy.allowed[origin]; dup {
			continue
		}
		policy.allowed[origin] = struct{}{}
		policy.origins = append(policy.origins, origin)
	}
	return policy
}

// Allows reports whether origin is on the list. Matching is exact.
func (p CORSPolicy) Allows(origin string) bool {
	_, ok := p.allowed[origin]
	return ok
}

// Origins returns the allow-list in order.
func (p CORSPolicy) Origins() []string {
	return append([]string(nil), p.origins...)
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// CORSMiddleware grants credentialed access to allow-listed origins.
// Requests from other origins get no Access-Control headers: simple requests
// continue down the pipeline, preflights are refused here so they never reach
// body decoding. Stages ahead of the error funnel get the formatter
// explicitly.
func CORSMiddleware(policy CORSPolicy, f *apierror.Formatter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")

			if !policy.Allows(origin) {
				f.Logger.Debug("origin not allowed",
					slog.String("origin", origin),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				if isPreflight(r) {
					f.Write(w, r, apierror.New(apierror.ErrorTypeInvalidRequest, "Origen no permitido por CORS").WithStatusCode(http.StatusForbidden))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if isPreflight(r) {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Content-Length", "0")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
