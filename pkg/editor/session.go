// Package editor implements the edit session for a customizable page: the
// working copy of a layout being edited, the last committed state, and the
// transitions between them (enter edit, apply deltas, hide/restore blocks,
// save, cancel, reset).
//
// Each page instance owns its own [Session]; there is no global registry, so
// two pages can never contaminate each other's state. Derived values (dirty
// flag, visible/hidden split) are recomputed from the active and saved state
// on every call rather than maintained as separate flags, so they can never
// drift.
package editor

import (
	"context"
	"sync"

	"github.com/tmarchal/pagegrid/pkg/grid"
	"github.com/tmarchal/pagegrid/pkg/store"
)

// Mode is the session's edit state.
type Mode int

const (
	// Viewing is the initial mode: the committed layout is displayed and
	// no mutation operations are accepted.
	Viewing Mode = iota

	// Editing means the active working copy may diverge from the saved
	// state until Save or Cancel.
	Editing
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// Session holds the edit state machine for one page. All methods are safe
// for concurrent use, although in practice a single UI event loop drives
// them; the lock mainly guards against an async Save resolving while other
// operations run.
type Session struct {
	mu sync.Mutex

	store   store.Store
	pageKey string
	blocks  []grid.Block

	mode         Mode
	active       grid.Set
	activeHidden map[string]struct{}
	saved        grid.Set
	savedHidden  map[string]struct{}

	// generation invalidates in-flight saves: it is bumped on every
	// transition that replaces the active state (load, enter edit,
	// cancel, reset), and a save outcome is only applied while the
	// generation it started under is still current.
	generation int
	saving     bool
}

// New creates a session for pageKey backed by the given persistence client.
// The session starts in Viewing mode with the default layout; call Load to
// bring in the persisted customization.
func New(st store.Store, pageKey string, blocks []grid.Block) *Session {
	defaults := grid.BuildDefaults(blocks)
	return &Session{
		store:        st,
		pageKey:      pageKey,
		blocks:       blocks,
		mode:         Viewing,
		active:       defaults.Clone(),
		activeHidden: map[string]struct{}{},
		saved:        defaults.Clone(),
		savedHidden:  map[string]struct{}{},
	}
}

// Load fetches the persisted record and merges it with the defaults derived
// from the current block descriptors. An absent record (nil from the store)
// is not an error: the merged defaults become the committed state. Malformed
// or stale persisted data is silently repaired by the merge.
func (s *Session) Load(ctx context.Context) error {
	rec, err := s.store.Get(ctx, s.pageKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := grid.BuildDefaults(s.blocks)
	var savedLayout grid.Set
	var savedHidden []string
	if rec != nil {
		savedLayout = rec.Layout
		savedHidden = rec.HiddenBlocks
	}

	s.saved = grid.Merge(defaults, savedLayout, s.blocks)
	s.savedHidden = grid.ResolveHidden(savedHidden, s.blocks)
	s.active = s.saved.Clone()
	s.activeHidden = grid.CloneHidden(s.savedHidden)
	s.mode = Viewing
	s.generation++
	return nil
}

// SetBlocks replaces the block descriptors, re-merging both the saved and
// active layouts against the new set. Blocks may appear or disappear between
// renders (a permission change effectively changes the known ids); items for
// ids that no longer exist are dropped and new blocks pick up their default
// placement.
func (s *Session) SetBlocks(blocks []grid.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks = blocks
	defaults := grid.BuildDefaults(blocks)
	s.saved = grid.Merge(defaults, s.saved, blocks)
	s.savedHidden = grid.ResolveHidden(grid.HiddenList(s.savedHidden, blocks), blocks)
	s.active = grid.Merge(defaults, s.active, blocks)
	s.activeHidden = grid.ResolveHidden(grid.HiddenList(s.activeHidden, blocks), blocks)
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Dirty reports whether the active state differs from the last committed
// state. It compares geometry only (sorted by block id); constraint fields
// are descriptor-derived and not user-editable.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Session) dirtyLocked() bool {
	return !grid.SetsStructurallyEqual(s.active, s.saved) ||
		!grid.HiddenEqual(s.activeHidden, s.savedHidden)
}

// Visible returns the active layout filtered to visible blocks plus the
// ordered descriptors of the hidden blocks, for a restore affordance.
func (s *Session) Visible() (grid.Set, []grid.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible, hidden := grid.SplitVisible(s.active, s.activeHidden, s.blocks)
	return visible, hidden
}

// Layout returns a copy of the full active layout, hidden blocks included.
func (s *Session) Layout() grid.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

// Hidden returns the active hidden block ids in descriptor order.
func (s *Session) Hidden() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return grid.HiddenList(s.activeHidden, s.blocks)
}

// EnterEdit transitions Viewing -> Editing, seeding the working copy from
// the committed state. A no-op while already editing.
func (s *Session) EnterEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == Editing {
		return
	}
	s.active = s.saved.Clone()
	s.activeHidden = grid.CloneHidden(s.savedHidden)
	s.mode = Editing
	s.generation++
}

// ApplyLayoutDelta applies a drag/resize result to the working copy. Only
// breakpoints present in the delta are touched; their item lists are
// replaced by the delta's items, with the last known geometry of currently
// hidden blocks re-appended so a block's position survives being hidden and
// later restored. Touched breakpoints are re-normalized. A no-op outside
// Editing.
func (s *Session) ApplyLayoutDelta(delta grid.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Editing {
		return
	}

	known := grid.KnownIDs(s.blocks)
	for _, bp := range grid.Breakpoints {
		items, ok := delta[bp]
		if !ok {
			continue
		}
		next := cloneForDelta(items)
		present := make(map[string]struct{}, len(next))
		for _, it := range next {
			present[it.ID] = struct{}{}
		}
		// The drag UI only reports visible blocks; carry hidden blocks'
		// stored geometry forward.
		for _, prev := range s.active[bp] {
			if _, hidden := s.activeHidden[prev.ID]; !hidden {
				continue
			}
			if _, dup := present[prev.ID]; dup {
				continue
			}
			next = append(next, prev)
		}
		s.active[bp] = grid.Normalize(next, bp.Columns(), known)
	}
}

// ToggleHidden flips a block's hidden state in the working copy. Hiding a
// required block is silently a no-op, as is toggling an unknown id or
// calling outside Editing.
func (s *Session) ToggleHidden(blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Editing {
		return
	}
	known := grid.KnownIDs(s.blocks)
	if _, ok := known[blockID]; !ok {
		return
	}
	if _, required := grid.RequiredIDs(s.blocks)[blockID]; required {
		return
	}
	if _, hidden := s.activeHidden[blockID]; hidden {
		delete(s.activeHidden, blockID)
	} else {
		s.activeHidden[blockID] = struct{}{}
	}
}

// Restore removes a block from the working copy's hidden set.
func (s *Session) Restore(blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Editing {
		return
	}
	delete(s.activeHidden, blockID)
}

// Save persists the working copy and, on success, promotes the snapshot it
// sent to the committed state. The session returns to Viewing only when the
// working copy still matches that snapshot; edits applied while the put was
// in flight keep it Editing and dirty so they can be saved in turn. With
// nothing dirty, or with a save already in flight, Save is a no-op. On
// failure the session stays in Editing with the active state intact so the
// user can retry; the error is returned unchanged for the caller to present.
// A save that resolves after an intervening Cancel, Reset or EnterEdit is
// discarded.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.mode != Editing || s.saving || !s.dirtyLocked() {
		s.mu.Unlock()
		return nil
	}
	s.saving = true
	gen := s.generation
	rec := store.Record{
		PageKey:      s.pageKey,
		Layout:       grid.NormalizeSet(s.active, s.blocks),
		HiddenBlocks: grid.HiddenList(s.activeHidden, s.blocks),
	}
	sentHidden := grid.CloneHidden(s.activeHidden)
	s.mu.Unlock()

	_, err := s.store.Put(ctx, s.pageKey, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false

	if err != nil {
		return err
	}
	if gen != s.generation {
		// A cancel/reset/re-enter happened while the save was in flight;
		// its outcome no longer applies.
		return nil
	}
	// Promote what was actually sent, not the current working copy: a
	// delta applied while the put was in flight is still unsaved.
	s.saved = rec.Layout.Clone()
	s.savedHidden = sentHidden
	if !s.dirtyLocked() {
		s.mode = Viewing
	}
	return nil
}

// Cancel discards all unsaved changes and returns to Viewing.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Editing {
		return
	}
	s.active = s.saved.Clone()
	s.activeHidden = grid.CloneHidden(s.savedHidden)
	s.mode = Viewing
	s.generation++
}

// Reset replaces the working copy with the pristine default layout and an
// empty hidden set. The session stays in Editing so the user can still back
// out of the reset with Cancel.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Editing {
		return
	}
	s.active = grid.BuildDefaults(s.blocks)
	s.activeHidden = map[string]struct{}{}
	s.generation++
}

func cloneForDelta(items []grid.Item) []grid.Item {
	out := make([]grid.Item, len(items))
	copy(out, items)
	return out
}
