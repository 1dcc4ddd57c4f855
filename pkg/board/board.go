// Package board holds the local item list that the user interacts with and
// applies reclassifications and status changes to it ahead of the calendar.
package board

import (
	"slices"
	"sync"

	"github.com/harrisonrobin/arrange/pkg/model"
)

// Board is the local state container: the current item list, how many
// mutations are still waiting for the calendar, and the last error a rolled
// back mutation produced.
type Board struct {
	mu      sync.Mutex
	items   []model.Item
	pending int
	lastErr error
}

// New returns a board holding a copy of items.
func New(items []model.Item) *Board {
	return &Board{items: cloneItems(items)}
}

// Items returns a copy of the current list.
func (b *Board) Items() []model.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneItems(b.items)
}

// Replace sets the list, e.g. after a fresh listing from the calendar, and
// clears the last error.
func (b *Board) Replace(items []model.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = cloneItems(items)
	b.lastErr = nil
}

// Find returns a copy of the item with the given id.
func (b *Board) Find(id string) (model.Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return model.Item{}, false
	}
	return b.items[i].Clone(), true
}

// Pending reports whether any mutation is waiting for the calendar.
func (b *Board) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending > 0
}

// Err returns the error of the most recent rollback.
func (b *Board) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func (b *Board) index(id string) int {
	return slices.IndexFunc(b.items, func(it model.Item) bool { return it.ID == id })
}

func cloneItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
