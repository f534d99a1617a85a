package catalogstub

import (
	"context"
	"sort"
	"strings"
	"sync"

	"NotebookStore/internal/catalog"
)

type MemStore struct {
	mu sync.RWMutex
	d  *catalog.Dataset
}

func NewMemStore() *MemStore {
	return NewMemStoreFrom(catalog.FallbackDataset())
}

func NewMemStoreFrom(d *catalog.Dataset) *MemStore {
	return &MemStore{d: d}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

// Put adds or replaces a notebook by id.
func (s *MemStore) Put(n catalog.Notebook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.d.Notebooks {
		if s.d.Notebooks[i].ID == n.ID {
			s.d.Notebooks[i] = n
			return
		}
	}
	s.d.Notebooks = append(s.d.Notebooks, n)
}

func (s *MemStore) FilterOptions(ctx context.Context) (catalog.FilterOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o := s.d.Options
	return catalog.FilterOptions{
		Brands:        append([]catalog.Brand(nil), o.Brands...),
		NotebookTypes: append([]catalog.NotebookType(nil), o.NotebookTypes...),
		Sizes:         append([]catalog.Size(nil), o.Sizes...),
		Rulings:       append([]catalog.Ruling(nil), o.Rulings...),
	}, nil
}

func (s *MemStore) Notebooks(ctx context.Context, f catalog.NotebookFilter) ([]catalog.Notebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Notebook, 0, len(s.d.Notebooks))
	for _, n := range s.d.Notebooks {
		if f.Brand != 0 && n.Brand.ID != f.Brand {
			continue
		}
		if f.Type != 0 && n.NotebookType.ID != f.Type {
			continue
		}
		if f.Size != 0 && !n.HasSize(f.Size) {
			continue
		}
		if !contains(f.Search, n.Name, n.BaseDescription, n.Brand.Name) {
			continue
		}
		out = append(out, n)
	}

	sortBy(out, f.Ordering, map[string]func(a, b catalog.Notebook) bool{
		"name":       func(a, b catalog.Notebook) bool { return a.Name < b.Name },
		"created_at": func(a, b catalog.Notebook) bool { return a.CreatedAt.Before(b.CreatedAt) },
	}, func(a, b catalog.Notebook) bool { return a.ID < b.ID })
	return out, nil
}

func (s *MemStore) Notebook(ctx context.Context, slug string) (catalog.Notebook, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.d.NotebookBySlug(slug)
	return n, ok, nil
}

func (s *MemStore) Variants(ctx context.Context, f catalog.VariantFilter) ([]catalog.NotebookVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []catalog.NotebookVariant
	for _, v := range s.d.FilterVariants(catalog.VariantFilter{Notebook: f.Notebook, Brand: f.Brand}) {
		if f.Size != 0 && v.Size.ID != f.Size {
			continue
		}
		if f.Ruling != 0 && v.Ruling.ID != f.Ruling {
			continue
		}
		if !contains(f.Search, v.DisplayName, v.NotebookName, v.FullDescription) {
			continue
		}
		out = append(out, v)
	}
	if out == nil {
		out = []catalog.NotebookVariant{}
	}

	sortBy(out, f.Ordering, map[string]func(a, b catalog.NotebookVariant) bool{
		"price_per_unit": func(a, b catalog.NotebookVariant) bool { return a.PricePerUnit.LessThan(b.PricePerUnit) },
		"gsm":            func(a, b catalog.NotebookVariant) bool { return a.GSM < b.GSM },
		"created_at":     func(a, b catalog.NotebookVariant) bool { return a.CreatedAt.Before(b.CreatedAt) },
	}, func(a, b catalog.NotebookVariant) bool { return a.ID < b.ID })
	return out, nil
}

func (s *MemStore) Variant(ctx context.Context, slug string) (catalog.NotebookVariant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.d.VariantBySlug(slug)
	return v, ok, nil
}

func contains(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// sortBy orders items by a DRF-style ordering key ("name", "-name"). Unknown keys
// fall back to byID.
func sortBy[T any](items []T, ordering string, keys map[string]func(a, b T) bool, byID func(a, b T) bool) {
	desc := strings.HasPrefix(ordering, "-")
	less, ok := keys[strings.TrimPrefix(ordering, "-")]
	if !ok {
		sort.SliceStable(items, func(i, j int) bool { return byID(items[i], items[j]) })
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
