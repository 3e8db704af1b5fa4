// Package grid implements the geometry model for adaptive dashboard layouts.
//
// A page is composed of independently positioned blocks. Each responsive
// breakpoint is its own layout space with a fixed column count; geometry in
// one breakpoint has no bearing on another. The package provides the pure
// algorithms behind that model:
//
//   - [Normalize]: repair a candidate item list into a valid, deduplicated,
//     non-overlapping layout
//   - [BuildDefaults]: derive a full fallback layout from block descriptors
//   - [Merge]: combine defaults with a persisted layout, descriptor
//     constraints winning over stale payloads
//   - [ResolveHidden] / [SplitVisible]: effective hidden-block handling
//
// All functions are deterministic: the same input always produces the same
// output, which the edit UI and its tests rely on.
package grid

import "math"

// Breakpoint is a named responsive viewport tier with its own column count.
type Breakpoint string

// The fixed breakpoint set, widest first.
const (
	Large  Breakpoint = "lg"
	Medium Breakpoint = "md"
	Small  Breakpoint = "sm"
	XSmall Breakpoint = "xs"
)

// Breakpoints lists every breakpoint in order from widest to narrowest.
var Breakpoints = []Breakpoint{Large, Medium, Small, XSmall}

// Columns returns the number of grid columns available at the breakpoint.
func (b Breakpoint) Columns() int {
	switch b {
	case Large:
		return 12
	case Medium:
		return 10
	case Small:
		return 6
	case XSmall:
		return 4
	}
	return 0
}

// MinWidth returns the pixel width threshold at which the breakpoint applies.
func (b Breakpoint) MinWidth() int {
	switch b {
	case Large:
		return 1200
	case Medium:
		return 996
	case Small:
		return 768
	case XSmall:
		return 480
	}
	return 0
}

// Valid reports whether b is one of the known breakpoints.
func (b Breakpoint) Valid() bool {
	return b.Columns() > 0
}

// WidthUnset marks a width that was absent from the wire payload. Normalize
// expands it to the breakpoint's full column count. It is deliberately far
// outside the clamp range so that an explicit negative width in a persisted
// payload can never be mistaken for an absent one.
const WidthUnset = math.MinInt32

// Item is one block's geometry within one breakpoint. Coordinates are grid
// units: X/W in columns, Y/H in rows. A W of [WidthUnset] means the wire
// payload carried no width and normalizes to the full row; any other value,
// negatives included, is clamped into the column range.
type Item struct {
	ID        string
	X, Y      int
	W, H      int
	MinH      int
	MaxH      int
	Resizable *bool
}

// Overlaps reports whether the two items' rectangles intersect, using
// half-open intervals [X, X+W) x [Y, Y+H).
func (it Item) Overlaps(other Item) bool {
	return it.X < other.X+other.W &&
		it.X+it.W > other.X &&
		it.Y < other.Y+other.H &&
		it.Y+it.H > other.Y
}

// Set maps each breakpoint to its ordered item list, with at most one item
// per block id per breakpoint.
type Set map[Breakpoint][]Item

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for bp, items := range s {
		out[bp] = cloneItems(items)
	}
	return out
}

// Items returns the item list for the breakpoint, or nil if none.
func (s Set) Items(bp Breakpoint) []Item {
	if s == nil {
		return nil
	}
	return s[bp]
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Placement is a block's default geometry within one breakpoint.
type Placement struct {
	X, Y, W, H int
}

// Block describes one unit of page content: identity, default geometry per
// breakpoint, and sizing constraints. Blocks are supplied by the calling page
// on every render and are the source of truth for constraints; a stale
// persisted payload can never reintroduce a constraint that no longer applies.
type Block struct {
	ID          string
	Title       string
	Defaults    map[Breakpoint]Placement
	MinH        int
	MaxH        int
	Resizable   *bool
	Required    bool
	Permissions []string
}

// KnownIDs returns the set of block ids present in blocks.
func KnownIDs(blocks []Block) map[string]struct{} {
	ids := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		ids[b.ID] = struct{}{}
	}
	return ids
}

// RequiredIDs returns the set of ids of blocks marked required.
func RequiredIDs(blocks []Block) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, b := range blocks {
		if b.Required {
			ids[b.ID] = struct{}{}
		}
	}
	return ids
}
