package grid

import "sort"

// geometry is the user-editable part of an item. Constraint fields are
// descriptor-derived and deliberately excluded from equality.
type geometry struct {
	id         string
	x, y, w, h int
}

// ItemsStructurallyEqual compares two item lists as sorted-by-id sets of
// {id, x, y, w, h} tuples. Input order does not matter.
func ItemsStructurallyEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	ga, gb := geometries(a), geometries(b)
	for i := range ga {
		if ga[i] != gb[i] {
			return false
		}
	}
	return true
}

// SetsStructurallyEqual reports whether the two layout sets carry the same
// geometry at every breakpoint. A missing breakpoint equals an empty one.
func SetsStructurallyEqual(a, b Set) bool {
	for _, bp := range Breakpoints {
		if !ItemsStructurallyEqual(a[bp], b[bp]) {
			return false
		}
	}
	return true
}

// HiddenEqual reports whether two hidden-id sets contain the same ids.
func HiddenEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

// CloneHidden returns a copy of the hidden-id set.
func CloneHidden(hidden map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(hidden))
	for id := range hidden {
		out[id] = struct{}{}
	}
	return out
}

func geometries(items []Item) []geometry {
	out := make([]geometry, len(items))
	for i, it := range items {
		out[i] = geometry{id: it.ID, x: it.X, y: it.Y, w: it.W, h: it.H}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
