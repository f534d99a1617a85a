package storefront

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"NotebookStore/internal/catalog"
	"NotebookStore/internal/facet"
	"NotebookStore/internal/session"
	"NotebookStore/pkg/kit"
)

type Server struct {
	Sessions *Registry
	Storage  session.Storage
	Log      *zap.Logger
}

type browseResp struct {
	facet.View
	Source catalog.Source `json:"source"`
}

var errBadParam = errors.New("bad query parameter")

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/filter-options", s.withSession(s.filterOptions))
	r.Get("/brands", s.withSession(s.brands))
	r.Get("/browse", s.withSession(s.browse))
	r.Get("/notebooks", s.withSession(s.notebooks))
	r.Get("/notebooks/{slug}", s.withSession(s.notebook))
	r.Get("/variants", s.withSession(s.variants))
	r.Get("/variants/{slug}", s.withSession(s.variant))
	r.Delete("/session/cache", s.withSession(s.clearCache))

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Storage.Ping(ctx); err != nil {
		s.log().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) filterOptions(w http.ResponseWriter, r *http.Request, sess *Session) {
	res := sess.Catalog.GetFilterOptions(r.Context())
	kit.WriteSourced(w, http.StatusOK, string(res.Source), res)
}

func (s *Server) brands(w http.ResponseWriter, r *http.Request, sess *Session) {
	res := sess.Catalog.GetBrands(r.Context())
	kit.WriteSourced(w, http.StatusOK, string(res.Source), res)
}

// browse serves the product listing for brand/type/size. brand may be an id or a slug;
// an unknown brand selects nothing. A request overtaken by a newer one from the same
// session answers 409 instead of a view that no longer matches the selection.
func (s *Server) browse(w http.ResponseWriter, r *http.Request, sess *Session) {
	q := r.URL.Query()

	typ, err1 := intParam(q.Get("type"))
	size, err2 := intParam(q.Get("size"))
	if err := errors.Join(err1, err2); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad selection", map[string]any{"cause": err.Error()})
		return
	}

	ticket := sess.Browser.Begin()
	opts, books := sess.Catalog.LoadCatalog(r.Context())

	sel := facet.Selection{
		Brand: resolveBrand(opts.Data, q.Get("brand")),
		Type:  typ,
		Size:  size,
	}

	view, err := sess.Browser.Commit(ticket, opts.Data, books.Data, sel)
	if errors.Is(err, facet.ErrStale) {
		kit.WriteError(w, r, http.StatusConflict, "selection superseded", nil)
		return
	}

	src := combineSources(opts.Source, books.Source)
	kit.WriteSourced(w, http.StatusOK, string(src), browseResp{View: view, Source: src})
}

func (s *Server) notebooks(w http.ResponseWriter, r *http.Request, sess *Session) {
	q := r.URL.Query()

	brand, err1 := intParam(q.Get("brand"))
	typ, err2 := intParam(q.Get("notebook_type"))
	size, err3 := intParam(q.Get("size"))
	if err := errors.Join(err1, err2, err3); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad filter", map[string]any{"cause": err.Error()})
		return
	}

	res := sess.Catalog.GetNotebooks(r.Context(), catalog.NotebookFilter{
		Brand:    brand,
		Type:     typ,
		Size:     size,
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	})
	kit.WriteSourced(w, http.StatusOK, string(res.Source), res)
}

func (s *Server) notebook(w http.ResponseWriter, r *http.Request, sess *Session) {
	slug := chi.URLParam(r, "slug")

	res := sess.Catalog.GetNotebookBySlug(r.Context(), slug)
	if !res.Success {
		kit.WriteError(w, r, http.StatusNotFound, res.Message, map[string]any{"slug": slug})
		return
	}
	kit.WriteSourced(w, http.StatusOK, string(res.Source), res)
}

func (s *Server) variants(w http.ResponseWriter, r *http.Request, sess *Session) {
	q := r.URL.Query()

	notebook, err1 := intParam(q.Get("notebook"))
	brand, err2 := intParam(q.Get("brand"))
	size, err3 := intParam(q.Get("size"))
	ruling, err4 := intParam(q.Get("ruling"))
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad filter", map[string]any{"cause": err.Error()})
		return
	}

	res := sess.Catalog.GetVariants(r.Context(), catalog.VariantFilter{
		Notebook: notebook,
		Brand:    brand,
		Size:     size,
		Ruling:   ruling,
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	})
	kit.WriteSourced(w, http.StatusOK, string(res.Source), res)
}

func (s *Server) variant(w http.ResponseWriter, r *http.Request, sess *Session) {
	slug := chi.URLParam(r, "slug")

	res := sess.Catalog.GetVariantBySlug(r.Context(), slug)
	if !res.Success {
		kit.WriteError(w, r, http.StatusNotFound, res.Message, map[string]any{"slug": slug})
		return
	}
	kit.WriteSourced(w, http.StatusOK, string(res.Source), res)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := sess.Cache.Clear(r.Context()); err != nil {
		s.log().Error("clear session cache failed", zap.Error(err), zap.String("session_id", sess.ID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) withSession(h func(http.ResponseWriter, *http.Request, *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			kit.WriteError(w, r, http.StatusInternalServerError, "no session", nil)
			return
		}
		h(w, r, sess)
	}
}

func intParam(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Join(errBadParam, errors.New(strconv.Quote(v)))
	}
	return n, nil
}

func resolveBrand(opts catalog.FilterOptions, v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if id, err := strconv.Atoi(v); err == nil {
		if opts.HasBrand(id) {
			return id
		}
		return 0
	}
	if b, ok := opts.BrandBySlug(v); ok {
		return b.ID
	}
	return 0
}

// combineSources reports the least trustworthy of the sources that fed a response.
func combineSources(srcs ...catalog.Source) catalog.Source {
	out := catalog.SourceCache
	for _, s := range srcs {
		switch s {
		case catalog.SourceFallback:
			return catalog.SourceFallback
		case catalog.SourceLive:
			out = catalog.SourceLive
		}
	}
	return out
}
