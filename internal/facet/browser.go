package facet

import (
	"errors"
	"sync"

	"NotebookStore/internal/catalog"
)

var ErrStale = errors.New("selection superseded")

// Ticket identifies one selection change. Only the newest ticket may commit.
type Ticket uint64

// Browser holds the selection state of one browsing session. Each selection change
// takes a ticket before its data is fetched; when the data arrives, Commit drops it
// if a newer change has started in the meantime.
type Browser struct {
	mu   sync.Mutex
	gen  uint64
	view View
}

func NewBrowser() *Browser {
	return &Browser{}
}

func (b *Browser) Begin() Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.gen++
	return Ticket(b.gen)
}

func (b *Browser) Current(t Ticket) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return uint64(t) == b.gen
}

func (b *Browser) Commit(t Ticket, opts catalog.FilterOptions, products []catalog.Notebook, sel Selection) (View, error) {
	v := Derive(opts, products, sel)

	b.mu.Lock()
	defer b.mu.Unlock()

	if uint64(t) != b.gen {
		return View{}, ErrStale
	}
	b.view = v
	return v, nil
}

// View returns the last committed view.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.view
}
