// Package facet derives the brand → type → size narrowing used by the product browser.
//
// Everything here is a pure function of the product list, the filter options and a
// Selection; nothing performs I/O. An id of 0 in a Selection means "no filter" for
// that level.
package facet

import (
	"sort"

	"NotebookStore/internal/catalog"
)

type Selection struct {
	Brand int `json:"brand"`
	Type  int `json:"type"`
	Size  int `json:"size"`
}

// View is everything a product listing renders for one selection.
type View struct {
	Selection Selection              `json:"selection"`
	Types     []catalog.NotebookType `json:"types"`
	Sizes     []catalog.Size         `json:"sizes"`
	Products  []catalog.Notebook     `json:"products"`
}

func Matches(n catalog.Notebook, sel Selection) bool {
	if sel.Brand != 0 && n.Brand.ID != sel.Brand {
		return false
	}
	if sel.Type != 0 && n.NotebookType.ID != sel.Type {
		return false
	}
	if sel.Size != 0 && !n.HasSize(sel.Size) {
		return false
	}
	return true
}

func Filter(products []catalog.Notebook, sel Selection) []catalog.Notebook {
	out := make([]catalog.Notebook, 0, len(products))
	for _, n := range products {
		if Matches(n, sel) {
			out = append(out, n)
		}
	}
	return out
}

// AvailableTypes returns every option type when no brand is selected, otherwise the
// types of that brand's products in the order they first appear. Types missing from
// opts are unlinked and never offered.
func AvailableTypes(products []catalog.Notebook, opts catalog.FilterOptions, brand int) []catalog.NotebookType {
	if brand == 0 {
		return append([]catalog.NotebookType{}, opts.NotebookTypes...)
	}

	seen := map[int]struct{}{}
	out := []catalog.NotebookType{}
	for _, n := range products {
		if n.Brand.ID != brand {
			continue
		}
		if _, dup := seen[n.NotebookType.ID]; dup || !opts.HasType(n.NotebookType.ID) {
			continue
		}
		seen[n.NotebookType.ID] = struct{}{}
		out = append(out, n.NotebookType)
	}
	return out
}

// AvailableSizes collects the sizes offered by products matching brand and typ,
// ordered by DisplayOrder. Equal orders keep first-seen order.
func AvailableSizes(products []catalog.Notebook, brand, typ int) []catalog.Size {
	sel := Selection{Brand: brand, Type: typ}

	seen := map[int]struct{}{}
	out := []catalog.Size{}
	for _, n := range products {
		if !Matches(n, sel) {
			continue
		}
		for _, s := range n.AvailableSizes {
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

// Repair keeps id when it is unset or still offered, and otherwise snaps to the first
// offered id (or to unset when nothing is offered).
func Repair(id int, offered []int) int {
	if id == 0 {
		return 0
	}
	for _, o := range offered {
		if o == id {
			return id
		}
	}
	if len(offered) == 0 {
		return 0
	}
	return offered[0]
}

// Derive runs the full cascade: the brand fixes the types, the repaired type fixes the
// sizes, and the repaired selection filters the products.
func Derive(opts catalog.FilterOptions, products []catalog.Notebook, sel Selection) View {
	types := AvailableTypes(products, opts, sel.Brand)
	sel.Type = Repair(sel.Type, typeIDs(types))

	sizes := AvailableSizes(products, sel.Brand, sel.Type)
	sel.Size = Repair(sel.Size, sizeIDs(sizes))

	return View{
		Selection: sel,
		Types:     types,
		Sizes:     sizes,
		Products:  Filter(products, sel),
	}
}

func typeIDs(ts []catalog.NotebookType) []int {
	ids := make([]int, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

func sizeIDs(ss []catalog.Size) []int {
	ids := make([]int, len(ss))
	for i, s := range ss {
		ids[i] = s.ID
	}
	return ids
}
