package server

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/espaciohogar/platform/internal/apierror"
)

func corsHandler(policy CORSPolicy) (http.Handler, *bool) {
	reached := new(bool)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusOK)
	})
	return CORSMiddleware(policy, apierror.NewFormatter(false, quietLogger()))(next), reached
}

func TestNewCORSPolicy(t *testing.T) {
	policy := NewCORSPolicy(" https://tienda.espaciohogar.app ", "http://localhost:3000", "", "http://localhost:3000")

	want := []string{"https://tienda.espaciohogar.app", "http://localhost:3000"}
	if got := policy.Origins(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Origins() = %v, want %v", got, want)
	}
}

func TestNewCORSPolicyConfiguredDuplicate(t *testing.T) {
	policy := NewCORSPolicy("http://localhost:3000", DefaultOrigins...)

	if got := len(policy.Origins()); got != len(DefaultOrigins) {
		t.Fatalf("len(Origins()) = %d, want %d", got, len(DefaultOrigins))
	}
}

func TestCORSPolicyAllowsExactMatch(t *testing.T) {
	policy := NewCORSPolicy("", DefaultOrigins...)

	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:5173", true},
		{"http://127.0.0.1:5173", true},
		{"https://espaciohogar.app", true},
		{"https://espaciohogar.app/", false},
		{"https://ESPACIOHOGAR.app", false},
		{"https://evil.espaciohogar.app", false},
		{"http://localhost:5174", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := policy.Allows(tt.origin); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestCORSMiddlewareAllowedOrigin(t *testing.T) {
	h, reached := corsHandler(NewCORSPolicy("", DefaultOrigins...))

	req := httptest.NewRequest(http.MethodGet, "/api/catalogo", nil)
	req.Header.Set("Origin", "https://espaciohogar.app")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !*reached {
		t.Fatal("allowed request did not reach next handler")
	}
	checkHeader(t, rec, "Access-Control-Allow-Origin", "https://espaciohogar.app")
	checkHeader(t, rec, "Access-Control-Allow-Credentials", "true")
	checkHeader(t, rec, "Vary", "Origin")
}

func TestCORSMiddlewareDisallowedOrigin(t *testing.T) {
	h, reached := corsHandler(NewCORSPolicy("", DefaultOrigins...))

	req := httptest.NewRequest(http.MethodGet, "/api/catalogo", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !*reached {
		t.Fatal("disallowed simple request should continue")
	}
	checkHeader(t, rec, "Access-Control-Allow-Origin", "")
	checkHeader(t, rec, "Access-Control-Allow-Credentials", "")
}

func TestCORSMiddlewareNoOrigin(t *testing.T) {
	h, reached := corsHandler(NewCORSPolicy("", DefaultOrigins...))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !*reached {
		t.Fatal("same-origin request did not reach next handler")
	}
	checkHeader(t, rec, "Access-Control-Allow-Origin", "")
	checkHeader(t, rec, "Vary", "")
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	h, reached := corsHandler(NewCORSPolicy("http://localhost:3000"))

	req := httptest.NewRequest(http.MethodOptions, "/api/pedidos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if *reached {
		t.Fatal("preflight should be answered by the CORS stage")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	checkHeader(t, rec, "Access-Control-Allow-Origin", "http://localhost:3000")
	checkHeader(t, rec, "Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	checkHeader(t, rec, "Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func TestCORSMiddlewarePlainOptionsContinues(t *testing.T) {
	h, reached := corsHandler(NewCORSPolicy("http://localhost:3000"))

	req := httptest.NewRequest(http.MethodOptions, "/api/pedidos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !*reached {
		t.Fatal("OPTIONS without Access-Control-Request-Method is not a preflight")
	}
}

func TestCORSMiddlewareDisallowedPreflight(t *testing.T) {
	h, reached := corsHandler(NewCORSPolicy("http://localhost:3000"))

	req := httptest.NewRequest(http.MethodOptions, "/api/pedidos", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if *reached {
		t.Fatal("disallowed preflight reached next handler")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	checkHeader(t, rec, "Access-Control-Allow-Origin", "")
	checkHeader(t, rec, "Access-Control-Allow-Methods", "")
}
