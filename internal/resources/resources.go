// Package resources declares the resource handler groups mounted under /api.
// Business handlers live behind the Group interface; the pipeline only owns
// where each group is mounted.
package resources

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/espaciohogar/platform/internal/apierror"
)

// Group owns every route under its prefix and registers them on r.
type Group interface {
	Register(r chi.Router)
}

// GroupFunc adapts a function to Group.
type GroupFunc func(r chi.Router)

func (f GroupFunc) Register(r chi.Router) { f(r) }

// Set holds one group per resource domain.
type Set struct {
	Auth            Group
	Users           Group
	Orders          Group
	Catalog         Group
	Recommendations Group
	Notifications   Group
	SpaceAnalysis   Group
	Models          Group
}

// Mount binds a group to its prefix relative to /api. An empty prefix
// registers the group directly on the /api router.
type Mount struct {
	Name   string
	Prefix string
	Group  Group
}

// Mounts returns the groups in registration order; nil groups are skipped.
func (s Set) Mounts() []Mount {
	all := []Mount{
		{Name: "auth", Prefix: "", Group: s.Auth},
		{Name: "usuarios", Prefix: "/usuarios", Group: s.Users},
		{Name: "pedidos", Prefix: "/pedidos", Group: s.Orders},
		{Name: "catalogo", Prefix: "/catalogo", Group: s.Catalog},
		{Name: "recomendaciones", Prefix: "/recomendaciones", Group: s.Recommendations},
		{Name: "notificaciones", Prefix: "/notificaciones", Group: s.Notifications},
		{Name: "analisis-espacio", Prefix: "/analisis-espacio", Group: s.SpaceAnalysis},
		{Name: "modelos", Prefix: "/modelos", Group: s.Models},
	}

	mounts := make([]Mount, 0, len(all))
	for _, m := range all {
		if m.Group != nil {
			mounts = append(mounts, m)
		}
	}
	return mounts
}

// Pending answers 501 on the given patterns until the domain handlers are
// wired in.
func Pending(name string, patterns ...string) Group {
	return GroupFunc(func(r chi.Router) {
		h := apierror.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			return apierror.ErrNotImplemented("Módulo " + name + " no disponible")
		})
		for _, p := range patterns {
			r.Handle(p, h)
		}
	})
}

// Defaults returns Pending groups for every domain. The auth group sits on
// the /api root, so it only claims its own endpoints.
func Defaults() Set {
	return Set{
		Auth:            Pending("auth", "/login", "/register", "/logout", "/me"),
		Users:           Pending("usuarios", "/", "/*"),
		Orders:          Pending("pedidos", "/", "/*"),
		Catalog:         Pending("catalogo", "/", "/*"),
		Recommendations: Pending("recomendaciones", "/", "/*"),
		Notifications:   Pending("notificaciones", "/", "/*"),
		SpaceAnalysis:   Pending("analisis-espacio", "/", "/*"),
		Models:          Pending("modelos", "/", "/*"),
	}
}
