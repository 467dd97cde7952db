package resources

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

//go:embed static
var static embed.FS

// Static returns the theme files shipped with the binary
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Registry maps file extensions to the content types they are served with.
// Files with unregistered extensions are not served.
type Registry struct {
	mu    sync.RWMutex
	types map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{types: map[string]string{}}
	r.Register("css", "text/css; charset=utf-8")
	r.Register("less", "text/css; charset=utf-8")
	r.Register("js", "text/javascript; charset=utf-8")
	r.Register("svg", "image/svg+xml")
	r.Register("ttf", "font/ttf")
	r.Register("woff", "font/woff")
	r.Register("woff2", "font/woff2")
	r.Register("eot", "application/vnd.ms-fontobject")
	r.Register("png", "image/png")
	r.Register("ico", "image/x-icon")
	return r
}

// Register adds or overrides the content type of ext. An empty content type
// falls back to the mime package.
func (r *Registry) Register(ext, contentType string) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if contentType == "" {
		contentType = mime.TypeByExtension("." + ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[ext] = contentType
}

// ContentType returns the registered content type for name
func (r *Registry) ContentType(name string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	r.mu.RLock()
	defer r.mu.RUnlock()
	contentType, ok := r.types[ext]
	return contentType, ok
}

type asset struct {
	content []byte
	etag    string
}

// Handler serves the files of fsys with cache headers and ETags. The content
// type is looked up in the registry per request, so files with extensions
// registered later are served as well. Paths are relative to the handler,
// strip any prefix before.
func Handler(fsys fs.FS, registry *Registry) (http.Handler, error) {
	assets := map[string]asset{}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(content)
		assets["/"+p] = asset{
			content: content,
			etag:    `W/"` + hex.EncodeToString(sum[:]) + `"`,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean("/" + r.URL.Path)
		a, ok := assets[p]
		if !ok {
			http.NotFound(w, r)
			return
		}
		contentType, ok := registry.ContentType(p)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", "public, max-age=604800, stale-while-revalidate=86400")
		w.Header().Set("ETag", a.etag)
		if etagMatch(r.Header.Get("If-None-Match"), a.etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(a.content)
	}), nil
}

// etagMatch applies the weak comparison of If-None-Match against etag
func etagMatch(ifNoneMatch, etag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if candidate != "" && strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}
