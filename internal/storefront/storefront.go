// Package storefront serves the built single-page app, one directory per locale.
package storefront

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/redmonkez12/shop-api/internal/logging"
)

// fallbackPage is served for client-side routes that match no file
const fallbackPage = "index.csr.html"

// Handler serves <root>/<locale> under /<locale>/
type Handler struct {
	root          string
	locales       []string
	defaultLocale string
}

func NewHandler(root string, locales []string, defaultLocale string) *Handler {
	if defaultLocale == "" && len(locales) > 0 {
		defaultLocale = locales[0]
	}
	return &Handler{root: root, locales: locales, defaultLocale: defaultLocale}
}

// NewRouter wraps the handler with the request middleware the API uses, minus CORS and CSP.
// trustProxy takes the logged client address from forwarding headers.
func NewRouter(h *Handler, logger *logging.Logger, trustProxy bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	h.Routes(r)
	return r
}

func (h *Handler) Routes(r chi.Router) {
	for _, locale := range h.locales {
		prefix := "/" + locale
		r.Get(prefix, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, prefix+"/", http.StatusMovedPermanently)
		})
		r.Get(prefix+"/*", h.serveLocale(os.DirFS(filepath.Join(h.root, locale))))
	}

	if h.defaultLocale != "" {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/"+h.defaultLocale, http.StatusFound)
		})
	}
}

func (h *Handler) serveLocale(fsys fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := resolve(fsys, chi.URLParam(r, "*"))
		if !ok {
			name = fallbackPage
		}
		http.ServeFileFS(w, r, fsys, name)
	}
}

// resolve maps a request path to a regular file in fsys. Directories resolve to their index.html.
// Paths that leave fsys never resolve.
func resolve(fsys fs.FS, requested string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+requested), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", false
	}

	info, err := fs.Stat(fsys, name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		name = path.Join(name, "index.html")
		info, err = fs.Stat(fsys, name)
		if err != nil || info.IsDir() {
			return "", false
		}
	}
	return name, true
}
