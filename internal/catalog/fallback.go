package catalog

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Dataset is the bundled demonstration catalog served when the remote API fails.
type Dataset struct {
	Options   FilterOptions
	Notebooks []Notebook
	Variants  []NotebookVariant
}

var fallbackStamp = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// FallbackDataset builds a new dataset on every call. A Dataset given to a Service is
// shared by every session and its lookups hand out shared slices; treat it as read-only.
func FallbackDataset() *Dataset {
	brands := []Brand{
		{ID: 1, Name: "Puspanjali", Slug: "puspanjali", Description: "Premium quality notebooks for students and professionals.", Paper: "60 GSM White Bond Paper"},
		{ID: 2, Name: "Eco-Write", Slug: "eco-write", Description: "Sustainable and recycled paper notebooks.", Paper: "90 GSM Recycled Kraft Paper"},
		{ID: 3, Name: "Zenith", Slug: "zenith", Description: "High-end stationery and journals.", Paper: "80 GSM Premium Ivory Paper"},
		{ID: 4, Name: "Classmate", Slug: "classmate", Description: "Popular choice for school students.", Paper: "70 GSM Brightwhite Paper"},
	}
	types := []NotebookType{
		{ID: 1, Name: "Copy", Slug: "copy"},
		{ID: 2, Name: "Register", Slug: "register"},
		{ID: 3, Name: "Practical Book", Slug: "practical-book"},
		{ID: 4, Name: "Drawing Book", Slug: "drawing-book"},
		{ID: 5, Name: "Spiral Notebook", Slug: "spiral-notebook"},
	}
	sizes := []Size{
		{ID: 1, Name: "School Size", Slug: "school-size", Width: 180, Height: 240, Unit: "mm", DisplayOrder: 1},
		{ID: 2, Name: "Big Size", Slug: "big-size", Width: 190, Height: 270, Unit: "mm", DisplayOrder: 2},
		{ID: 3, Name: "A4 Size", Slug: "a4-size", Width: 210, Height: 297, Unit: "mm", DisplayOrder: 3},
		{ID: 4, Name: "Pocket Size", Slug: "pocket-size", Width: 90, Height: 140, Unit: "mm", DisplayOrder: 4},
	}
	rulings := []Ruling{
		{ID: 1, Name: "Single Lined", Slug: "single-lined"},
		{ID: 2, Name: "Unruled (Plain)", Slug: "unruled"},
		{ID: 3, Name: "2 Lined", Slug: "2-lined"},
		{ID: 4, Name: "4 Lined", Slug: "4-lined"},
		{ID: 5, Name: "Square Grid", Slug: "square-grid"},
	}

	variant := func(id int, slug, notebook string, b Brand, t NotebookType, s Size, r Ruling, gsm int, price, desc string) NotebookVariant {
		return NotebookVariant{
			ID:              id,
			Slug:            slug,
			NotebookName:    notebook,
			NotebookBrand:   b,
			NotebookType:    t,
			Size:            s,
			Ruling:          r,
			GSM:             gsm,
			PricePerUnit:    decimal.RequireFromString(price),
			FullDescription: desc,
			DisplayName:     notebook + " (" + s.Name + ", " + r.Name + ", " + strconv.Itoa(gsm) + " GSM)",
			IsActive:        true,
			CreatedAt:       fallbackStamp,
			UpdatedAt:       fallbackStamp,
		}
	}

	copyVariants := []NotebookVariant{
		variant(101, "puspanjali-copy-big-size-single-lined-120-pages", "Puspanjali Copy", brands[0], types[0], sizes[1], rulings[0], 60, "40.00",
			"Standard Puspanjali copy with high-quality white paper. Ideal for secondary school students."),
		variant(102, "puspanjali-copy-big-size-2-lined-120-pages", "Puspanjali Copy", brands[0], types[0], sizes[1], rulings[2], 70, "45.00",
			"High-quality 2-lined ruling for cursive writing practice."),
	}
	registerVariants := []NotebookVariant{
		variant(103, "puspanjali-register-a4-single-lined-240-pages", "Puspanjali Register", brands[0], types[1], sizes[2], rulings[0], 80, "100.00",
			"Hardcover register for office and long-term notes."),
	}
	spiralVariants := []NotebookVariant{
		variant(201, "eco-write-spiral-a4-unruled-100-pages", "Eco-Write Spiral", brands[1], types[4], sizes[2], rulings[1], 90, "50.00",
			"Made from 100% recycled materials. Great for sketching and journaling."),
	}

	notebooks := []Notebook{
		{
			ID: 1, Name: "Puspanjali Copy", Slug: "puspanjali-copy",
			Brand: brands[0], NotebookType: types[0], Image: "/notebooks/copy.jpg",
			BaseDescription:  "The standard choice for many schools, featuring our signature smooth paper.",
			IsActive:         true,
			Variants:         copyVariants,
			AvailableSizes:   []Size{sizes[1]},
			AvailableRulings: []Ruling{rulings[0], rulings[2]},
			CreatedAt:        fallbackStamp, UpdatedAt: fallbackStamp,
		},
		{
			ID: 2, Name: "Puspanjali Register", Slug: "puspanjali-register",
			Brand: brands[0], NotebookType: types[1], Image: "/notebooks/register.jpg",
			BaseDescription:  "Durable registers designed for heavy usage.",
			IsActive:         true,
			Variants:         registerVariants,
			AvailableSizes:   []Size{sizes[2]},
			AvailableRulings: []Ruling{rulings[0]},
			CreatedAt:        fallbackStamp, UpdatedAt: fallbackStamp,
		},
		{
			ID: 3, Name: "Eco-Write Spiral", Slug: "eco-write-spiral",
			Brand: brands[1], NotebookType: types[4], Image: "/notebooks/spiral.jpg",
			BaseDescription:  "Sustainable stationery for the eco-conscious individual.",
			IsActive:         true,
			Variants:         spiralVariants,
			AvailableSizes:   []Size{sizes[2]},
			AvailableRulings: []Ruling{rulings[1]},
			CreatedAt:        fallbackStamp, UpdatedAt: fallbackStamp,
		},
	}

	variants := make([]NotebookVariant, 0, 4)
	variants = append(variants, copyVariants...)
	variants = append(variants, registerVariants...)
	variants = append(variants, spiralVariants...)

	return &Dataset{
		Options: FilterOptions{
			Brands:        brands,
			NotebookTypes: types,
			Sizes:         sizes,
			Rulings:       rulings,
		},
		Notebooks: notebooks,
		Variants:  variants,
	}
}

func (d *Dataset) NotebooksByBrand(brand int) []Notebook {
	if brand == 0 {
		return append([]Notebook(nil), d.Notebooks...)
	}
	out := make([]Notebook, 0, len(d.Notebooks))
	for _, n := range d.Notebooks {
		if n.Brand.ID == brand {
			out = append(out, n)
		}
	}
	return out
}

func (d *Dataset) NotebookBySlug(slug string) (Notebook, bool) {
	for _, n := range d.Notebooks {
		if n.Slug == slug {
			return n, true
		}
	}
	return Notebook{}, false
}

func (d *Dataset) VariantBySlug(slug string) (NotebookVariant, bool) {
	for _, v := range d.Variants {
		if v.Slug == slug {
			return v, true
		}
	}
	return NotebookVariant{}, false
}

// FilterVariants applies only the brand and notebook constraints.
func (d *Dataset) FilterVariants(f VariantFilter) []NotebookVariant {
	var owned map[int]struct{}
	if f.Notebook != 0 {
		owned = map[int]struct{}{}
		for _, n := range d.Notebooks {
			if n.ID != f.Notebook {
				continue
			}
			for _, v := range n.Variants {
				owned[v.ID] = struct{}{}
			}
		}
	}

	out := make([]NotebookVariant, 0, len(d.Variants))
	for _, v := range d.Variants {
		if f.Brand != 0 && v.NotebookBrand.ID != f.Brand {
			continue
		}
		if owned != nil {
			if _, ok := owned[v.ID]; !ok {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}
