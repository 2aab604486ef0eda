// Package api registers the JSON routes of the preview server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/ecoscore/internal/adapters/repository"
)

const defaultLimit = 20

// Catalog is the read side the handlers need.
type Catalog interface {
	Rank(ctx context.Context, id string) (repository.Entry, error)
	Search(ctx context.Context, q string, limit int) ([]repository.Entry, error)
	Count(ctx context.Context) int
}

// Server wires HTTP routes for the preview API.
type Server struct {
	catalog       Catalog
	maxLimit      int
	healthHandler *HealthHandler
}

// NewServer creates a new API server. maxLimit caps the limit query parameter.
func NewServer(catalog Catalog, maxLimit int) *Server {
	if maxLimit <= 0 {
		maxLimit = defaultLimit
	}
	return &Server{
		catalog:       catalog,
		maxLimit:      maxLimit,
		healthHandler: NewHealthHandler(),
	}
}

// Register attaches all API routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /api/products", MetricsMiddleware(s.HandleSearch, "products"))
	mux.HandleFunc("GET /api/products/{id}", MetricsMiddleware(s.HandleGet, "product"))
}

type productList struct {
	Total int                `json:"total"`
	Items []repository.Entry `json:"items"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleSearch handles GET /api/products?q=&limit=N.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_products"
	limit := min(defaultLimit, s.maxLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > s.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	items, err := s.catalog.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if items == nil {
		items = []repository.Entry{}
	}
	writeJSON(w, http.StatusOK, productList{Total: s.catalog.Count(r.Context()), Items: items})
}

// HandleGet handles GET /api/products/{id}.
func (s *Server) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_product"
	entry, err := s.catalog.Rank(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, entry)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
