package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	opFilterOptions = "filter_options"
	opNotebooks     = "notebooks"
	opNotebook      = "notebook"
	opVariants      = "variants"
	opVariant       = "variant"
)

// Cache is the session-scoped store for the two globally cacheable responses.
// Get reports false when the cache is cold or expired.
type Cache interface {
	Get(ctx context.Context) (Snapshot, bool)
	Update(ctx context.Context, fn func(*Snapshot)) error
}

type Recorder interface {
	RecordCatalogFetch(op, source string)
	RecordUpstreamError(op, kind string)
}

// Service is the catalog access layer. Listing operations never report failure:
// when the API is unusable they answer from Fallback and tag the result accordingly.
type Service struct {
	API      API
	Cache    Cache
	Fallback *Dataset
	Log      *zap.Logger
	Metrics  Recorder
}

func NewService(api API, cache Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		API:      api,
		Cache:    cache,
		Fallback: FallbackDataset(),
		Log:      log,
	}
}

func (s *Service) GetFilterOptions(ctx context.Context) Result[FilterOptions] {
	if snap, hit := s.cached(ctx); hit && snap.FilterOptions != nil {
		return record(s, opFilterOptions, success(*snap.FilterOptions, SourceCache))
	}

	opts, err := s.API.FilterOptions(ctx)
	if err != nil {
		s.upstreamFailed(opFilterOptions, err)
		return record(s, opFilterOptions, success(s.fallback().Options, SourceFallback))
	}

	s.store(ctx, func(snap *Snapshot) {
		o := opts
		snap.FilterOptions = &o
	})
	return record(s, opFilterOptions, success(opts, SourceLive))
}

func (s *Service) GetBrands(ctx context.Context) Result[[]Brand] {
	r := s.GetFilterOptions(ctx)
	return Result[[]Brand]{Success: r.Success, Data: r.Data.Brands, Message: r.Message, Source: r.Source}
}

func (s *Service) GetNotebooks(ctx context.Context, f NotebookFilter) Result[[]Notebook] {
	global := f.IsZero()
	if global {
		if snap, hit := s.cached(ctx); hit && snap.Notebooks != nil {
			return record(s, opNotebooks, success(snap.Notebooks, SourceCache))
		}
	}

	books, err := s.API.Notebooks(ctx, f)
	if err != nil {
		s.upstreamFailed(opNotebooks, err)
		return record(s, opNotebooks, success(s.fallback().NotebooksByBrand(f.Brand), SourceFallback))
	}
	if books == nil {
		books = []Notebook{}
	}

	if global {
		s.store(ctx, func(snap *Snapshot) { snap.Notebooks = books })
	}
	return record(s, opNotebooks, success(books, SourceLive))
}

// GetNotebookBySlug is never cached; each detail view fetches again.
func (s *Service) GetNotebookBySlug(ctx context.Context, slug string) Result[Notebook] {
	n, err := s.API.Notebook(ctx, slug)
	if err == nil {
		return record(s, opNotebook, success(n, SourceLive))
	}
	s.upstreamFailed(opNotebook, err)

	if n, found := s.fallback().NotebookBySlug(slug); found {
		return record(s, opNotebook, success(n, SourceFallback))
	}
	return notFound[Notebook]()
}

func (s *Service) GetVariants(ctx context.Context, f VariantFilter) Result[[]NotebookVariant] {
	vs, err := s.API.Variants(ctx, f)
	if err != nil {
		s.upstreamFailed(opVariants, err)
		return record(s, opVariants, success(s.fallback().FilterVariants(f), SourceFallback))
	}
	if vs == nil {
		vs = []NotebookVariant{}
	}
	return record(s, opVariants, success(vs, SourceLive))
}

func (s *Service) GetVariantBySlug(ctx context.Context, slug string) Result[NotebookVariant] {
	v, err := s.API.Variant(ctx, slug)
	if err == nil {
		return record(s, opVariant, success(v, SourceLive))
	}
	s.upstreamFailed(opVariant, err)

	if v, found := s.fallback().VariantBySlug(slug); found {
		return record(s, opVariant, success(v, SourceFallback))
	}
	return notFound[NotebookVariant]()
}

// LoadCatalog fetches filter options and the global notebook list in parallel.
func (s *Service) LoadCatalog(ctx context.Context) (Result[FilterOptions], Result[[]Notebook]) {
	var (
		opts  Result[FilterOptions]
		books Result[[]Notebook]
		g     errgroup.Group
	)

	g.Go(func() error {
		opts = s.GetFilterOptions(ctx)
		return nil
	})
	g.Go(func() error {
		books = s.GetNotebooks(ctx, NotebookFilter{})
		return nil
	})
	// Neither fetch can fail, fallback covers both; the group only waits.
	_ = g.Wait()

	return opts, books
}

func (s *Service) cached(ctx context.Context) (Snapshot, bool) {
	if s.Cache == nil {
		return Snapshot{}, false
	}
	return s.Cache.Get(ctx)
}

func (s *Service) store(ctx context.Context, fn func(*Snapshot)) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Update(ctx, fn); err != nil {
		s.log().Warn("session cache write failed", zap.Error(err))
	}
}

func (s *Service) upstreamFailed(op string, err error) {
	kind := ErrorKind(err)
	if s.Metrics != nil {
		s.Metrics.RecordUpstreamError(op, kind)
	}
	if errors.Is(err, ErrNotFound) {
		s.log().Info("catalog entity missing upstream", zap.String("op", op))
		return
	}
	s.log().Warn("catalog fetch failed, using fallback data",
		zap.String("op", op),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

func record[T any](s *Service, op string, r Result[T]) Result[T] {
	if s.Metrics != nil && r.Success {
		s.Metrics.RecordCatalogFetch(op, string(r.Source))
	}
	return r
}

func (s *Service) fallback() *Dataset {
	if s.Fallback == nil {
		return FallbackDataset()
	}
	return s.Fallback
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
