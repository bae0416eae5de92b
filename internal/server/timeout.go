package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/espaciohogar/platform/internal/apierror"
)

// TimeoutMiddleware enforces request timeouts.
// If a request exceeds the specified timeout, the context is cancelled.
// Note: This does not forcibly terminate the handler, it relies on the handler
// checking context.Done() for cooperative cancellation. A handler that gives
// up without writing anything gets a 504.
func TimeoutMiddleware(timeout time.Duration, f *apierror.Formatter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutResponseWriter{ResponseWriter: w}
			next.ServeHTTP(tw, r.WithContext(ctx))

			if !tw.wroteHeader && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				f.Write(w, r, apierror.New(apierror.ErrorTypeTimeout, "La petición excedió el tiempo máximo").WithCause(ctx.Err()))
			}
		})
	}
}

type timeoutResponseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (tw *timeoutResponseWriter) WriteHeader(code int) {
	tw.wroteHeader = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutResponseWriter) Write(b []byte) (int, error) {
	tw.wroteHeader = true
	return tw.ResponseWriter.Write(b)
}

func (tw *timeoutResponseWriter) Flush() {
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
