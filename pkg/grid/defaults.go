package grid

// DefaultBlockHeight is the row height used for blocks that supply no
// default placement at a breakpoint.
const DefaultBlockHeight = 8

// defaultGutter is the vertical gap left between stacked default blocks.
const defaultGutter = 1

// BuildDefaults produces one full, valid layout per breakpoint by stacking
// blocks vertically in their given order. A block's own default placement
// supplies x/w/h where present; otherwise the block takes the full row at
// DefaultBlockHeight. The y coordinate always comes from the running stack
// position, so defaults never overlap by construction. The result is still
// passed through Normalize to absorb any inconsistency in caller-supplied
// placements.
func BuildDefaults(blocks []Block) Set {
	known := KnownIDs(blocks)
	set := make(Set, len(Breakpoints))

	for _, bp := range Breakpoints {
		columns := bp.Columns()
		items := make([]Item, 0, len(blocks))
		y := 0
		for _, b := range blocks {
			placement, ok := b.Defaults[bp]
			if !ok {
				placement = Placement{X: 0, W: columns, H: DefaultBlockHeight}
			}
			h := max(placement.H, 1)
			items = append(items, Item{
				ID: b.ID,
				X:  placement.X, Y: y,
				W: placement.W, H: h,
				MinH: b.MinH, MaxH: b.MaxH, Resizable: b.Resizable,
			})
			y += h + defaultGutter
		}
		set[bp] = Normalize(items, columns, known)
	}
	return set
}
