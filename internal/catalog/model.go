package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Brand struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Paper       string `json:"paper,omitempty"`
}

type NotebookType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Size struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Unit         string  `json:"unit"`
	DisplayOrder int     `json:"display_order"`
}

type Ruling struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type NotebookVariant struct {
	ID              int             `json:"id"`
	Slug            string          `json:"slug"`
	NotebookName    string          `json:"notebook_name"`
	NotebookBrand   Brand           `json:"notebook_brand"`
	NotebookType    NotebookType    `json:"notebook_type"`
	Size            Size            `json:"size"`
	Ruling          Ruling          `json:"ruling"`
	GSM             int             `json:"gsm"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	FullDescription string          `json:"full_description,omitempty"`
	DisplayName     string          `json:"display_name"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Notebook struct {
	ID               int               `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Brand            Brand             `json:"brand"`
	NotebookType     NotebookType      `json:"notebook_type"`
	Image            string            `json:"image"`
	BaseDescription  string            `json:"base_description"`
	IsActive         bool              `json:"is_active"`
	Variants         []NotebookVariant `json:"variants,omitempty"`
	AvailableSizes   []Size            `json:"available_sizes"`
	AvailableRulings []Ruling          `json:"available_rulings"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Normalize drops repeated sizes and rulings, keeping the first occurrence of each id.
func (n *Notebook) Normalize() {
	n.AvailableSizes = uniqueByID(n.AvailableSizes, func(s Size) int { return s.ID })
	n.AvailableRulings = uniqueByID(n.AvailableRulings, func(r Ruling) int { return r.ID })
}

func (n Notebook) HasSize(id int) bool {
	for _, s := range n.AvailableSizes {
		if s.ID == id {
			return true
		}
	}
	return false
}

type FilterOptions struct {
	Brands        []Brand        `json:"brands"`
	NotebookTypes []NotebookType `json:"notebook_types"`
	Sizes         []Size         `json:"sizes"`
	Rulings       []Ruling       `json:"rulings"`
}

func (o FilterOptions) BrandByID(id int) (Brand, bool) {
	for _, b := range o.Brands {
		if b.ID == id {
			return b, true
		}
	}
	return Brand{}, false
}

func (o FilterOptions) BrandBySlug(slug string) (Brand, bool) {
	for _, b := range o.Brands {
		if b.Slug == slug {
			return b, true
		}
	}
	return Brand{}, false
}

func (o FilterOptions) HasBrand(id int) bool {
	_, ok := o.BrandByID(id)
	return ok
}

func (o FilterOptions) HasType(id int) bool {
	for _, t := range o.NotebookTypes {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Snapshot is the session cache record. Timestamp is in Unix milliseconds.
type Snapshot struct {
	FilterOptions *FilterOptions `json:"filterOptions"`
	Notebooks     []Notebook     `json:"notebooks"`
	Timestamp     int64          `json:"timestamp"`
}

type NotebookFilter struct {
	Brand    int
	Type     int
	Size     int
	Search   string
	Ordering string
}

// IsZero reports a global fetch: no parameter set at all.
func (f NotebookFilter) IsZero() bool {
	return f == NotebookFilter{}
}

type VariantFilter struct {
	Notebook int
	Brand    int
	Size     int
	Ruling   int
	Search   string
	Ordering string
}

func uniqueByID[T any](in []T, id func(T) int) []T {
	if len(in) == 0 {
		return in
	}
	seen := make(map[int]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		k := id(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
