package grid

// ResolveHidden computes the effective hidden-block set from a persisted one:
// ids of required blocks and ids that no longer match a known block are
// removed. The result is safe to apply directly to a layout.
func ResolveHidden(persisted []string, blocks []Block) map[string]struct{} {
	known := KnownIDs(blocks)
	required := RequiredIDs(blocks)
	out := make(map[string]struct{}, len(persisted))
	for _, id := range persisted {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, ok := required[id]; ok {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}

// SplitVisible filters each breakpoint's items down to the blocks not in
// hidden and separately returns the ordered descriptors of the hidden blocks
// for a restore affordance.
func SplitVisible(set Set, hidden map[string]struct{}, blocks []Block) (Set, []Block) {
	visible := make(Set, len(set))
	for bp, items := range set {
		kept := make([]Item, 0, len(items))
		for _, it := range items {
			if _, ok := hidden[it.ID]; ok {
				continue
			}
			kept = append(kept, it)
		}
		visible[bp] = kept
	}

	var hiddenBlocks []Block
	for _, b := range blocks {
		if _, ok := hidden[b.ID]; ok {
			hiddenBlocks = append(hiddenBlocks, b)
		}
	}
	return visible, hiddenBlocks
}

// HiddenList returns the hidden set as a deterministic slice ordered by the
// block descriptor order, for serialization.
func HiddenList(hidden map[string]struct{}, blocks []Block) []string {
	out := make([]string, 0, len(hidden))
	for _, b := range blocks {
		if _, ok := hidden[b.ID]; ok {
			out = append(out, b.ID)
		}
	}
	return out
}
