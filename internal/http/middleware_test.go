package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		path      string
		csp       string
		cacheCtrl string
	}{
		{"/api/users", "default-src 'none'", "no-store"},
		{"/health", "default-src 'none'", ""},
		{"/swagger/index.html", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, tt.csp, rec.Header().Get("Content-Security-Policy"))
			assert.Equal(t, tt.cacheCtrl, rec.Header().Get("Cache-Control"))
		})
	}
}
