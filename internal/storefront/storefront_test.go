package storefront

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/shop-api/internal/logging"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	root := t.TempDir()
	dist := filepath.Join(root, "browser")

	writeFile(t, filepath.Join(dist, "fr", "index.csr.html"), "fr app")
	writeFile(t, filepath.Join(dist, "fr", "main.js"), "console.log('fr')")
	writeFile(t, filepath.Join(dist, "fr", "assets", "index.html"), "assets index")
	writeFile(t, filepath.Join(dist, "en-US", "index.csr.html"), "en app")
	writeFile(t, filepath.Join(root, "secret.txt"), "top secret")

	return NewRouter(NewHandler(dist, []string{"fr", "en-US"}, ""), logging.Discard(), false)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRootRedirectsToDefaultLocale(t *testing.T) {
	rec := get(newTestRouter(t), "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/fr", rec.Header().Get("Location"))
}

func TestLocaleWithoutSlashRedirects(t *testing.T) {
	rec := get(newTestRouter(t), "/en-US")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/en-US/", rec.Header().Get("Location"))
}

func TestServesExistingFiles(t *testing.T) {
	h := newTestRouter(t)

	rec := get(h, "/fr/main.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log('fr')", rec.Body.String())

	rec = get(h, "/fr/assets/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "assets index", rec.Body.String())
}

func TestUnknownPathsFallBackToApp(t *testing.T) {
	h := newTestRouter(t)

	rec := get(h, "/fr/products/42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr app", rec.Body.String())

	rec = get(h, "/en-US/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en app", rec.Body.String())
}

func TestRefusesTraversal(t *testing.T) {
	h := newTestRouter(t)

	for _, target := range []string{"/fr/../../secret.txt", "/fr/..%2f..%2fsecret.txt"} {
		rec := get(h, target)
		assert.NotContains(t, rec.Body.String(), "top secret", target)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	fsys := os.DirFS(dir)

	name, ok := resolve(fsys, "a.txt")
	assert.True(t, ok)
	assert.Equal(t, "a.txt", name)

	_, ok = resolve(fsys, "empty")
	assert.False(t, ok, "directory without index.html")

	_, ok = resolve(fsys, "missing.txt")
	assert.False(t, ok)

	name, ok = resolve(fsys, "../a.txt")
	assert.True(t, ok, "cleaned to stay inside the root")
	assert.Equal(t, "a.txt", name)
}
