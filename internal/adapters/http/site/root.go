// Package site serves a built catalog directory over HTTP.
package site

import (
	"context"
	"errors"
	"net/http"
	"os"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// Register attaches the built site in dir to the root of mux.
// It fails when dir does not exist, so the server never starts blank.
func Register(_ context.Context, mux *http.ServeMux, dir string) error {
	if mux == nil {
		panic("mux is nil")
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return errors.Join(ErrServe, err)
	}
	if !fi.IsDir() {
		return errors.Join(ErrServe, errors.New(dir+" is not a directory"))
	}

	mux.Handle("GET /", NewRootHandler(dir))
	return nil
}

// RootHandler serves files of a built site.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a handler over dir.
func NewRootHandler(dir string) *RootHandler {
	return &RootHandler{files: http.FileServer(http.Dir(dir))}
}

// ServeHTTP serves index.html for directories and static files otherwise.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
