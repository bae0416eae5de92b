package resources

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMountsOrderAndPrefixes(t *testing.T) {
	mounts := Defaults().Mounts()

	want := []string{"", "/usuarios", "/pedidos", "/catalogo", "/recomendaciones", "/notificaciones", "/analisis-espacio", "/modelos"}
	if len(mounts) != len(want) {
		t.Fatalf("mounts = %d, want %d", len(mounts), len(want))
	}
	for i, m := range mounts {
		if m.Prefix != want[i] {
			t.Errorf("mount %d prefix = %q, want %q", i, m.Prefix, want[i])
		}
	}
}

func TestMountsSkipsNilGroups(t *testing.T) {
	mounts := Set{Orders: Pending("pedidos", "/")}.Mounts()
	if len(mounts) != 1 || mounts[0].Name != "pedidos" {
		t.Fatalf("unexpected mounts %+v", mounts)
	}
}

func TestPendingAnswersNotImplemented(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/pedidos", Pending("pedidos", "/", "/*").Register)

	for _, path := range []string{"/pedidos", "/pedidos/", "/pedidos/42/items"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		if rec.Code != http.StatusNotImplemented {
			t.Errorf("%s: status = %d, want 501", path, rec.Code)
		}
	}
}

func TestGroupFunc(t *testing.T) {
	called := false
	GroupFunc(func(r chi.Router) { called = true }).Register(chi.NewRouter())
	if !called {
		t.Fatal("GroupFunc did not call through")
	}
}
