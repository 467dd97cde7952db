package resources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	contentType, ok := r.ContentType("fonts/OpenSans.TTF")
	require.True(t, ok)
	assert.Equal(t, "font/ttf", contentType)

	_, ok = r.ContentType("readme.txt")
	assert.False(t, ok)

	r.Register(".JSON", "")
	contentType, ok = r.ContentType("manifest.json")
	require.True(t, ok)
	assert.Equal(t, "application/json", contentType)
}

func TestHandler(t *testing.T) {
	fsys := fstest.MapFS{
		"css/theme.css":  {Data: []byte("body{}")},
		"icons/logo.svg": {Data: []byte("<svg/>")},
		"secrets.txt":    {Data: []byte("nope")},
	}
	h, err := Handler(fsys, NewRegistry())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/css/theme.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "body{}", rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/css/theme.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secrets.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerIfNoneMatch(t *testing.T) {
	h, err := Handler(fstest.MapFS{"css/theme.css": {Data: []byte("body{}")}}, NewRegistry())
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/css/theme.css", nil))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	strong := strings.TrimPrefix(etag, "W/")

	for _, tt := range []struct {
		header string
		want   int
	}{
		{etag, http.StatusNotModified},
		{`"other", ` + etag, http.StatusNotModified},
		{`"other",` + strong + `, "more"`, http.StatusNotModified},
		{"*", http.StatusNotModified},
		{`"other"`, http.StatusOK},
		{`W/"other", "more"`, http.StatusOK},
		{",", http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodGet, "/css/theme.css", nil)
		req.Header.Set("If-None-Match", tt.header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.header)
	}
}

func TestHandlerRegisterAfterBuild(t *testing.T) {
	registry := NewRegistry()
	h, err := Handler(fstest.MapFS{"data/manifest.json": {Data: []byte("{}")}}, registry)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data/manifest.json", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	registry.Register("json", "application/manifest+json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data/manifest.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/manifest+json", rec.Header().Get("Content-Type"))
}

func TestStatic(t *testing.T) {
	h, err := Handler(Static(), NewRegistry())
	require.NoError(t, err)
	for _, p := range []string{"/css/theme.css", "/css/variables.less", "/icons/logo.svg"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
}
