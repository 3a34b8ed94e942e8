package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsBackend() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_WildcardOrigin(t *testing.T) {
	h := CORS(DefaultCORSConfig())(corsBackend())

	req := httptest.NewRequest("GET", "/api/books", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ExplicitOriginAllowed(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://grimoire.example"}
	h := CORS(cfg)(corsBackend())

	req := httptest.NewRequest("GET", "/api/books", nil)
	req.Header.Set("Origin", "https://grimoire.example")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://grimoire.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_OriginRejected(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://grimoire.example"}
	h := CORS(cfg)(corsBackend())

	req := httptest.NewRequest("GET", "/api/books", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS(DefaultCORSConfig())(corsBackend())

	req := httptest.NewRequest("OPTIONS", "/api/books", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCacheControl_OnlyGET(t *testing.T) {
	h := CacheControl(60)(corsBackend())

	get := httptest.NewRequest("GET", "/api/books/bestrating", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, get)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	post := httptest.NewRequest("POST", "/api/books", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, post)
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}
