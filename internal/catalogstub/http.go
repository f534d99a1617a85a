package catalogstub

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"NotebookStore/internal/catalog"
	"NotebookStore/pkg/kit"
)

type Server struct {
	Store  Store
	Faults *Faults
	Log    *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		if s.Faults != nil {
			r.Use(s.Faults.Middleware)
		}
		r.Get("/filter-options/", s.filterOptions)
		r.Get("/notebooks/", s.notebooks)
		r.Get("/notebooks/{slug}/", s.notebook)
		r.Get("/notebook-variants/", s.variants)
		r.Get("/notebook-variants/{slug}/", s.variant)
	})

	return r
}

func (s *Server) filterOptions(w http.ResponseWriter, r *http.Request) {
	o, err := s.Store.FilterOptions(r.Context())
	if err != nil {
		s.serverError(w, r, "filter options failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) notebooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	out, err := s.Store.Notebooks(r.Context(), catalog.NotebookFilter{
		Brand:    atoi(q.Get("brand")),
		Type:     atoi(q.Get("notebook_type")),
		Size:     atoi(q.Get("size")),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	})
	if err != nil {
		s.serverError(w, r, "list notebooks failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) notebook(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	n, ok, err := s.Store.Notebook(r.Context(), slug)
	if err != nil {
		s.serverError(w, r, "get notebook failed", err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"slug": slug})
		return
	}
	kit.WriteJSON(w, http.StatusOK, n)
}

func (s *Server) variants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	out, err := s.Store.Variants(r.Context(), catalog.VariantFilter{
		Notebook: atoi(q.Get("notebook")),
		Brand:    atoi(q.Get("brand")),
		Size:     atoi(q.Get("size")),
		Ruling:   atoi(q.Get("ruling")),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	})
	if err != nil {
		s.serverError(w, r, "list variants failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) variant(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	v, ok, err := s.Store.Variant(r.Context(), slug)
	if err != nil {
		s.serverError(w, r, "get variant failed", err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"slug": slug})
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

// atoi treats anything that is not a positive integer as "no filter".
func atoi(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
