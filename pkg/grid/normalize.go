package grid

// Normalize repairs a candidate item list into a valid layout for a
// breakpoint with the given column count. It is the recovery mechanism for
// corrupt or stale persisted data, not a packing optimizer: determinism is
// worth more than density here.
//
// The steps run in a fixed order:
//
//  1. Drop items whose id is not in known, and drop repeated ids (first
//     occurrence in input order wins).
//  2. Clamp geometry: w into [1, columns] ([WidthUnset] takes the full row;
//     an explicit negative clamps to 1), h to at least 1, x shifted left so
//     x+w fits, y to at least 0.
//  3. Resolve overlaps greedily in input order: an item that intersects any
//     already-accepted item is discarded outright. A discarded item simply
//     has no geometry at this breakpoint until the next default/merge pass
//     reintroduces it.
func Normalize(items []Item, columns int, known map[string]struct{}) []Item {
	columns = max(columns, 1)
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))

	for _, it := range items {
		if _, ok := known[it.ID]; !ok {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}

		w := it.W
		if w == WidthUnset {
			w = columns
		}
		w = min(max(w, 1), columns)
		h := max(it.H, 1)
		x := max(it.X, 0)
		if x+w > columns {
			x = max(columns-w, 0)
		}
		y := max(it.Y, 0)

		candidate := Item{
			ID: it.ID, X: x, Y: y, W: w, H: h,
			MinH: it.MinH, MaxH: it.MaxH, Resizable: it.Resizable,
		}
		if overlapsAny(candidate, out) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// NormalizeSet applies Normalize to every breakpoint of the set using the
// block descriptors for the known-id set and per-breakpoint column counts.
func NormalizeSet(set Set, blocks []Block) Set {
	known := KnownIDs(blocks)
	out := make(Set, len(Breakpoints))
	for _, bp := range Breakpoints {
		out[bp] = Normalize(set[bp], bp.Columns(), known)
	}
	return out
}

func overlapsAny(it Item, accepted []Item) bool {
	for _, other := range accepted {
		if it.Overlaps(other) {
			return true
		}
	}
	return false
}
