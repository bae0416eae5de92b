package server

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/espaciohogar/platform/internal/apierror"
)

// HealthPath is the liveness endpoint.
const HealthPath = "/health"

// APIPrefix is the mount point of the resource groups.
const APIPrefix = "/api"

const isoMillis = "2006-01-02T15:04:05.000Z"

// HealthStatus is the liveness document.
type HealthStatus struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
}

// APINotFound is the body for unmatched /api paths.
type APINotFound struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apierror.WriteJSON(w, http.StatusOK, HealthStatus{
		Status:      "OK",
		Timestamp:   s.now().UTC().Format(isoMillis),
		Uptime:      s.now().Sub(s.startedAt).Seconds(),
		Environment: s.environment,
	})
}

func (s *Server) mountAPI(api chi.Router) {
	api.NotFound(s.handleAPINotFound)
	api.MethodNotAllowed(s.handleMethodNotAllowed)

	for _, m := range s.groups.Mounts() {
		if m.Prefix == "" {
			api.Group(m.Group.Register)
			continue
		}
		api.Route(m.Prefix, m.Group.Register)
	}
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	AddLogField(r.Context(), "error", "unmatched api route")
	apierror.WriteJSON(w, http.StatusNotFound, APINotFound{
		Error: "Ruta API no encontrada",
		Path:  r.URL.Path,
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierror.Write(w, r, apierror.ErrMethodNotAllowed("Método "+r.Method+" no permitido en "+r.URL.Path))
}

// isAPIPath matches /api and anything below it, by whole segment.
func isAPIPath(p string) bool {
	return p == APIPrefix || strings.HasPrefix(p, APIPrefix+"/")
}

// handleFrontend serves built assets and falls back to index.html so the
// client-side router can resolve the path.
func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		s.handleAPINotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		apierror.Write(w, r, apierror.ErrNotFound("Ruta no encontrada"))
		return
	}
	if s.assets == nil {
		apierror.Write(w, r, apierror.ErrNotFound("Frontend no disponible"))
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && s.serveAsset(w, r, name) {
		return
	}
	if !s.serveAsset(w, r, "index.html") {
		apierror.Write(w, r, apierror.ErrNotFound("Frontend no disponible"))
	}
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}

	f, err := s.assets.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			return false
		}
		content = bytes.NewReader(data)
	}

	if name == "index.html" {
		w.Header().Set("Cache-Control", "no-cache")
	}
	http.ServeContent(w, r, name, info.ModTime(), content)
	return true
}

// assetExists reports whether name can be served from fsys.
func assetExists(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

func (s *Server) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}
