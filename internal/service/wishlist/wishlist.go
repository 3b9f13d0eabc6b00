package wishlist

import "strings"

// Wishlist is a set of product ids. Insertion order is kept so display and persistence
// are deterministic.
type Wishlist struct {
	ids   []string
	index map[string]struct{}
}

func New() *Wishlist {
	return &Wishlist{index: make(map[string]struct{})}
}

// Toggle adds id when absent and removes it when present. It reports whether id was added.
func (w *Wishlist) Toggle(id string) bool {
	if _, ok := w.index[id]; ok {
		delete(w.index, id)
		for i, v := range w.ids {
			if v == id {
				w.ids = append(w.ids[:i], w.ids[i+1:]...)
				break
			}
		}
		return false
	}
	w.index[id] = struct{}{}
	w.ids = append(w.ids, id)
	return true
}

func (w *Wishlist) Contains(id string) bool {
	_, ok := w.index[id]
	return ok
}

// IDs returns the wishlisted ids in insertion order.
func (w *Wishlist) IDs() []string {
	out := make([]string, len(w.ids))
	copy(out, w.ids)
	return out
}

func (w *Wishlist) Len() int {
	return len(w.ids)
}

// Restore replaces the contents with ids, skipping blanks, duplicates and ids rejected by
// known. A nil known accepts every id. It returns the number of skipped entries.
func (w *Wishlist) Restore(ids []string, known func(id string) bool) int {
	w.ids = nil
	w.index = make(map[string]struct{}, len(ids))
	skipped := 0
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || w.Contains(id) || (known != nil && !known(id)) {
			skipped++
			continue
		}
		w.index[id] = struct{}{}
		w.ids = append(w.ids, id)
	}
	return skipped
}
