package catalogstub

import (
	"context"

	"NotebookStore/internal/catalog"
)

// Store backs the stub catalog API.
type Store interface {
	Ping(ctx context.Context) error
	FilterOptions(ctx context.Context) (catalog.FilterOptions, error)
	Notebooks(ctx context.Context, f catalog.NotebookFilter) ([]catalog.Notebook, error)
	Notebook(ctx context.Context, slug string) (catalog.Notebook, bool, error)
	Variants(ctx context.Context, f catalog.VariantFilter) ([]catalog.NotebookVariant, error)
	Variant(ctx context.Context, slug string) (catalog.NotebookVariant, bool, error)
}
