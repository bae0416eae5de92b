package apierror

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

const genericServerMessage = "Error interno del servidor"

// Body is the uniform error document.
type Body struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Formatter writes errors as JSON. Outside development, server errors get a
// generic message and causes are never included. Other 5xx types (501, 504)
// keep their client-facing message.
type Formatter struct {
	Development bool
	Logger      *slog.Logger

	// OnError, when set, sees every error before it is written.
	OnError func(r *http.Request, err error)
}

// NewFormatter creates a formatter; a nil logger uses slog's default.
func NewFormatter(development bool, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{Development: development, Logger: logger}
}

// Format builds the status and body for err.
func (f *Formatter) Format(err error) (int, Body) {
	apiErr := As(err)
	status := apiErr.HTTPStatusCode()

	body := Body{Error: apiErr.Message, Status: status}
	if apiErr.Type == ErrorTypeServer && !f.Development {
		body.Error = genericServerMessage
	}
	if f.Development && apiErr.Cause != nil {
		body.Detail = apiErr.Cause.Error()
	}
	return status, body
}

// Write renders err on w. It never panics.
func (f *Formatter) Write(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	status, body := f.Format(err)
	if f.OnError != nil {
		f.OnError(r, err)
	}

	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	if id := w.Header().Get("X-Request-ID"); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if status >= http.StatusInternalServerError {
		f.Logger.Error("request failed", attrs...)
	} else {
		f.Logger.Debug("request rejected", attrs...)
	}

	WriteJSON(w, status, body)
}

// WriteJSON writes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type formatterKey struct{}

// FromContext returns the formatter installed by Middleware, or a
// production formatter when none is present.
func FromContext(ctx context.Context) *Formatter {
	if f, ok := ctx.Value(formatterKey{}).(*Formatter); ok && f != nil {
		return f
	}
	return NewFormatter(false, nil)
}

// Write sends err through the formatter attached to the request.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	FromContext(r.Context()).Write(w, r, err)
}

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		Write(w, r, err)
	}
}

// Middleware is the error funnel: it makes f available to handlers and
// converts panics into server errors. http.ErrAbortHandler is re-raised so
// net/http can abort the connection.
func Middleware(f *Formatter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				f.Logger.Error("handler panic",
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())))

				cause, ok := rec.(error)
				if !ok {
					cause = fmt.Errorf("%v", rec)
				}
				f.Write(w, r, ErrServer("internal server error").WithCause(cause))
			}()

			ctx := context.WithValue(r.Context(), formatterKey{}, f)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
