// Package site serves the embedded front-end document and its assets.
package site

import (
	"bytes"
	"context"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Reserved prefixes never fall back to the front-end document.
var reserved = []string{"/api", "/health"}

// RootHandler serves the front-end document.
type RootHandler struct {
	index   []byte
	modTime time.Time
	files   http.Handler
}

// NewRootHandler creates a new root handler over the embedded assets.
func NewRootHandler() *RootHandler {
	index, err := fs.ReadFile(assets, indexFile)
	if err != nil {
		panic("site: embedded " + indexFile + " missing")
	}
	return &RootHandler{index: index, modTime: time.Now(), files: http.FileServer(FS())}
}

// Register attaches / and each alias, and installs the SPA fallback as the
// router's NotFound handler.
func Register(_ context.Context, r chi.Router, aliases []string) {
	if r == nil {
		panic("router is nil")
	}

	h := NewRootHandler()
	seen := map[string]bool{}
	for _, p := range append([]string{"/"}, aliases...) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		r.Get(p, h.HandleRoot)
		r.Head(p, h.HandleRoot)
	}
	r.NotFound(h.HandleFallback)
}

// HandleRoot handles GET / and the alias paths.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, indexFile, h.modTime, bytes.NewReader(h.index))
}

// HandleFallback serves assets by extension and the document for any other
// GET or HEAD outside the reserved prefixes.
func (h *RootHandler) HandleFallback(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if isReserved(p) || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		notFound(w)
		return
	}
	if path.Ext(p) == "" {
		h.HandleRoot(w, r)
		return
	}
	if _, err := fs.Stat(assets, strings.TrimPrefix(path.Clean(p), "/")); err != nil {
		notFound(w)
		return
	}
	h.files.ServeHTTP(w, r)
}

func isReserved(p string) bool {
	for _, prefix := range reserved {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"code":"not_found","message":"Not Found"}` + "\n"))
}
