package grid

// Merge combines a default layout with an optionally-absent persisted one.
// With no saved layout it is equivalent to normalizing the defaults.
//
// Per breakpoint the merge starts from the default item list, so every
// current block has an entry, then overwrites geometry (x, y, w, h) with the
// saved values for matching ids. Sizing constraints (MinH, MaxH, Resizable)
// always come from the descriptor-derived default entry, never from the
// saved payload: constraints are a property of the current block definition,
// and old persisted state must not resurrect one that no longer applies.
// Saved items for ids absent from the defaults are appended only while the
// id is still a known block. Duplicate saved ids are ignored after the first.
// The combined list is normalized last.
func Merge(defaults Set, saved Set, blocks []Block) Set {
	known := KnownIDs(blocks)
	byID := make(map[string]Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}

	out := make(Set, len(Breakpoints))
	for _, bp := range Breakpoints {
		base := cloneItems(defaults[bp])
		if base == nil {
			base = []Item{}
		}

		if saved != nil {
			index := make(map[string]int, len(base))
			for i, it := range base {
				index[it.ID] = i
			}
			merged := make(map[string]struct{}, len(saved[bp]))
			for _, sv := range saved[bp] {
				if _, ok := known[sv.ID]; !ok {
					continue
				}
				if _, dup := merged[sv.ID]; dup {
					continue
				}
				merged[sv.ID] = struct{}{}

				if i, ok := index[sv.ID]; ok {
					base[i].X, base[i].Y = sv.X, sv.Y
					base[i].W, base[i].H = sv.W, sv.H
					continue
				}
				// Defensive: defaults normally cover every known block.
				b := byID[sv.ID]
				index[sv.ID] = len(base)
				base = append(base, Item{
					ID: sv.ID, X: sv.X, Y: sv.Y, W: sv.W, H: sv.H,
					MinH: b.MinH, MaxH: b.MaxH, Resizable: b.Resizable,
				})
			}
		}

		out[bp] = Normalize(base, bp.Columns(), known)
	}
	return out
}
