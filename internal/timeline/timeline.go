package timeline

import "sort"

// Item is one time-scoped member of a timeline: a layer of a composition or
// an element of a layer. Index points into the owner's arena.
type Item struct {
	Index    int
	Start    float64
	Duration float64
	ZIndex   int
}

// End returns the exclusive end of the item's window.
func (it Item) End() float64 {
	return it.Start + it.Duration
}

// Entry is an item visible at some instant together with its local time.
type Entry struct {
	Item  Item
	Local float64
}

// Timeline is an immutable, paint-ordered set of items for one level of
// the composition tree. It is safe for concurrent use.
type Timeline struct {
	items []Item
}

// New returns a timeline with items sorted by ascending z-index. Items with
// equal z-index keep their declaration order.
func New(items []Item) *Timeline {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ZIndex < sorted[j].ZIndex
	})
	return &Timeline{items: sorted}
}

// Len returns the number of items.
func (tl *Timeline) Len() int {
	return len(tl.items)
}

// Items returns the items in paint order.
func (tl *Timeline) Items() []Item {
	return tl.items
}

// ActiveAt returns the items active at local time t of the owner, in paint
// order (low z first). dst is reused when it has capacity.
func (tl *Timeline) ActiveAt(t float64, dst []Entry) []Entry {
	dst = dst[:0]
	for _, it := range tl.items {
		local, ok := Resolve(t, it.Start, it.Duration)
		if !ok {
			continue
		}
		dst = append(dst, Entry{Item: it, Local: local})
	}
	return dst
}
