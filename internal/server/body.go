package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/espaciohogar/platform/internal/apierror"
)

type jsonBodyKey struct{}

type formBodyKey struct{}

// BodyMiddleware decodes JSON and urlencoded bodies up to limit bytes.
// Decoded payloads are stored in the request context and the raw body is
// rewound so handlers may read it again. Other content types pass through
// untouched.
func BodyMiddleware(limit int64, f *apierror.Formatter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			var decode func(context.Context, []byte) (context.Context, error)
			switch {
			case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
				decode = decodeJSON
			case mediaType == "application/x-www-form-urlencoded":
				decode = decodeForm
			default:
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				f.Write(w, r, apierror.ErrPayloadTooLarge("El cuerpo de la petición excede el límite permitido"))
				return
			}

			data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					f.Write(w, r, apierror.ErrPayloadTooLarge("El cuerpo de la petición excede el límite permitido").WithCause(err))
					return
				}
				f.Write(w, r, apierror.ErrInvalidRequest("No se pudo leer el cuerpo de la petición").WithCause(err))
				return
			}

			ctx := r.Context()
			if len(bytes.TrimSpace(data)) > 0 {
				ctx, err = decode(ctx, data)
				if err != nil {
					f.Write(w, r, err)
					return
				}
			}

			r = r.WithContext(ctx)
			r.Body = io.NopCloser(bytes.NewReader(data))
			r.ContentLength = int64(len(data))
			next.ServeHTTP(w, r)
		})
	}
}

func decodeJSON(ctx context.Context, data []byte) (context.Context, error) {
	trimmed := bytes.TrimSpace(data)
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return ctx, apierror.ErrInvalidRequest("El cuerpo JSON debe ser un objeto o un arreglo")
	}
	if !json.Valid(trimmed) {
		return ctx, apierror.ErrInvalidRequest("JSON inválido en el cuerpo de la petición")
	}
	return context.WithValue(ctx, jsonBodyKey{}, json.RawMessage(trimmed)), nil
}

func decodeForm(ctx context.Context, data []byte) (context.Context, error) {
	values, err := ParseNestedForm(string(data))
	if err != nil {
		return ctx, apierror.ErrInvalidRequest("Formulario inválido en el cuerpo de la petición").WithCause(err)
	}
	return context.WithValue(ctx, formBodyKey{}, values), nil
}

// JSONBody returns the decoded JSON document, if the request carried one.
func JSONBody(ctx context.Context) (json.RawMessage, bool) {
	raw, ok := ctx.Value(jsonBodyKey{}).(json.RawMessage)
	return raw, ok
}

// DecodeJSON unmarshals the decoded JSON body into v. A request without a
// JSON body is reported as invalid.
func DecodeJSON(r *http.Request, v any) error {
	raw, ok := JSONBody(r.Context())
	if !ok {
		return apierror.ErrInvalidRequest("Se esperaba un cuerpo JSON")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apierror.ErrInvalidRequest("JSON inválido en el cuerpo de la petición").WithCause(err)
	}
	return nil
}

// FormBody returns the decoded urlencoded form, if the request carried one.
func FormBody(ctx context.Context) (map[string]any, bool) {
	values, ok := ctx.Value(formBodyKey{}).(map[string]any)
	return values, ok
}
