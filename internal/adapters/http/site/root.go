// Package site serves the public single-page site.
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// Paths inside the public tree.
const (
	IndexFile   = "index.html"
	FaviconFile = "images/favicon.png"
)

// ErrResourceUnavailable means a fixed site document could not be read.
var ErrResourceUnavailable = errors.New("resource unavailable")

// Site serves documents from a public tree.
type Site struct {
	fsys fs.FS
}

// New creates a Site over fsys. A nil fsys uses the embedded tree.
func New(fsys fs.FS) *Site {
	if fsys == nil {
		fsys = FS()
	}
	return &Site{fsys: fsys}
}

// Index handles GET / with the landing document.
func (s *Site) Index(w http.ResponseWriter, r *http.Request) error {
	return s.serveFile(w, r, IndexFile, "text/html; charset=utf-8")
}

// Favicon handles GET /favicon.ico.
func (s *Site) Favicon(w http.ResponseWriter, r *http.Request) error {
	return s.serveFile(w, r, FaviconFile, "image/png")
}

// Assets serves every other file of the public tree.
func (s *Site) Assets() http.Handler {
	return http.FileServer(http.FS(s.fsys))
}

func (s *Site) serveFile(w http.ResponseWriter, r *http.Request, name, contentType string) error {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrResourceUnavailable, name, err)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
	return nil
}
