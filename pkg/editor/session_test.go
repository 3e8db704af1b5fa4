package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tmarchal/pagegrid/pkg/grid"
	"github.com/tmarchal/pagegrid/pkg/store"
)

// fakeStore records puts and can be programmed to fail or block.
type fakeStore struct {
	record  *store.Record
	getErr  error
	putErr  error
	puts    int
	putGate chan struct{} // when set, Put blocks until the gate closes
}

func (f *fakeStore) Get(ctx context.Context, key string) (*store.Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record.Clone(), nil
}

func (f *fakeStore) Put(ctx context.Context, key string, rec store.Record) (*store.Record, error) {
	if f.putGate != nil {
		<-f.putGate
	}
	f.puts++
	if f.putErr != nil {
		return nil, f.putErr
	}
	now := time.Now()
	rec.UpdatedAt = &now
	f.record = rec.Clone()
	return rec.Clone(), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error { return nil }
func (f *fakeStore) Close() error                                 { return nil }

func sessionBlocks() []grid.Block {
	return []grid.Block{
		{
			ID:       "header",
			Title:    "Header",
			Required: true,
			Defaults: map[grid.Breakpoint]grid.Placement{
				grid.Large: {X: 0, Y: 0, W: 12, H: 4},
			},
		},
		{
			ID:    "table",
			Title: "Table",
			Defaults: map[grid.Breakpoint]grid.Placement{
				grid.Large: {X: 0, Y: 4, W: 12, H: 12},
			},
		},
		{
			ID:    "stats",
			Title: "Stats",
			Defaults: map[grid.Breakpoint]grid.Placement{
				grid.Large: {X: 0, Y: 16, W: 6, H: 6},
			},
		},
	}
}

func newTestSession(t *testing.T, fs *fakeStore) *Session {
	t.Helper()
	s := New(fs, "module:pharmacy:inventory", sessionBlocks())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return s
}

func TestLoadWithoutRecordUsesDefaults(t *testing.T) {
	s := newTestSession(t, &fakeStore{})

	if s.Mode() != Viewing {
		t.Errorf("mode = %v, want Viewing", s.Mode())
	}
	if s.Dirty() {
		t.Errorf("fresh session is dirty")
	}
	visible, hidden := s.Visible()
	if len(visible[grid.Large]) != 3 {
		t.Errorf("visible lg items = %d, want 3", len(visible[grid.Large]))
	}
	if len(hidden) != 0 {
		t.Errorf("hidden blocks = %+v, want none", hidden)
	}
}

func TestLoadMergesPersistedRecord(t *testing.T) {
	fs := &fakeStore{
		record: &store.Record{
			PageKey: "module:pharmacy:inventory",
			Layout: grid.Set{
				grid.Large: {
					{ID: "header", X: 0, Y: 0, W: 6, H: 4},
					{ID: "stale-block", X: 6, Y: 0, W: 6, H: 4},
				},
			},
			HiddenBlocks: []string{"stats", "header"},
		},
	}
	s := newTestSession(t, fs)

	layout := s.Layout()[grid.Large]
	var header *grid.Item
	for i := range layout {
		if layout[i].ID == "stale-block" {
			t.Errorf("stale block survived the merge")
		}
		if layout[i].ID == "header" {
			header = &layout[i]
		}
	}
	if header == nil || header.W != 6 {
		t.Errorf("header = %+v, want saved geometry w=6", header)
	}

	// header is required and must be stripped from the hidden set.
	hiddenIDs := s.Hidden()
	if len(hiddenIDs) != 1 || hiddenIDs[0] != "stats" {
		t.Errorf("hidden = %v, want [stats]", hiddenIDs)
	}
}

func TestMutationsOutsideEditingAreNoOps(t *testing.T) {
	s := newTestSession(t, &fakeStore{})

	s.ApplyLayoutDelta(grid.Set{grid.Large: {{ID: "table", X: 0, Y: 0, W: 6, H: 6}}})
	s.ToggleHidden("stats")

	if s.Dirty() {
		t.Errorf("mutations in Viewing mode changed state")
	}
}

func TestEditSaveRoundtrip(t *testing.T) {
	fs := &fakeStore{}
	s := newTestSession(t, fs)

	s.EnterEdit()
	if s.Mode() != Editing {
		t.Fatalf("mode = %v, want Editing", s.Mode())
	}

	s.ApplyLayoutDelta(grid.Set{
		grid.Large: {
			{ID: "header", X: 0, Y: 0, W: 12, H: 4},
			{ID: "table", X: 0, Y: 4, W: 6, H: 12},
			{ID: "stats", X: 6, Y: 4, W: 6, H: 6},
		},
	})
	if !s.Dirty() {
		t.Fatalf("session not dirty after layout delta")
	}

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if fs.puts != 1 {
		t.Errorf("store received %d puts, want 1", fs.puts)
	}
	if s.Mode() != Viewing {
		t.Errorf("mode after save = %v, want Viewing", s.Mode())
	}
	if s.Dirty() {
		t.Errorf("session dirty after successful save")
	}
}

func TestSaveWithNothingDirtyIsNoOp(t *testing.T) {
	fs := &fakeStore{}
	s := newTestSession(t, fs)

	s.EnterEdit()
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if fs.puts != 0 {
		t.Errorf("clean save reached the store (%d puts)", fs.puts)
	}
}

func TestSaveFailureKeepsEditingState(t *testing.T) {
	fs := &fakeStore{putErr: errors.New("network down")}
	s := newTestSession(t, fs)

	s.EnterEdit()
	s.ApplyLayoutDelta(grid.Set{
		grid.Large: {
			{ID: "header", X: 0, Y: 0, W: 12, H: 4},
			{ID: "table", X: 0, Y: 4, W: 6, H: 12},
		},
	})
	before := s.Layout()

	err := s.Save(context.Background())
	if err == nil {
		t.Fatalf("Save() succeeded, want failure")
	}
	if s.Mode() != Editing {
		t.Errorf("mode after failed save = %v, want Editing", s.Mode())
	}
	if !s.Dirty() {
		t.Errorf("session no longer dirty after failed save")
	}
	if !grid.SetsStructurallyEqual(before, s.Layout()) {
		t.Errorf("active layout changed by failed save")
	}
}

func TestCancelDiscardsChanges(t *testing.T) {
	fs := &fakeStore{}
	s := newTestSession(t, fs)
	committed := s.Layout()

	s.EnterEdit()
	s.ApplyLayoutDelta(grid.Set{
		grid.Large: {
			{ID: "header", X: 0, Y: 0, W: 12, H: 4},
			{ID: "table", X: 0, Y: 4, W: 3, H: 3},
		},
	})
	s.ToggleHidden("stats")
	s.Cancel()

	if s.Mode() != Viewing {
		t.Errorf("mode after cancel = %v, want Viewing", s.Mode())
	}
	if s.Dirty() {
		t.Errorf("session dirty after cancel")
	}
	if !grid.SetsStructurallyEqual(committed, s.Layout()) {
		t.Errorf("cancel did not restore the committed layout")
	}
	if fs.puts != 0 {
		t.Errorf("cancel reached the store (%d puts)", fs.puts)
	}
}

func TestResetThenCancel(t *testing.T) {
	fs := &fakeStore{
		record: &store.Record{
			PageKey: "module:pharmacy:inventory",
			Layout: grid.Set{
				grid.Large: {
					{ID: "header", X: 0, Y: 0, W: 6, H: 4},
					{ID: "table", X: 6, Y: 0, W: 6, H: 12},
				},
			},
		},
	}
	s := newTestSession(t, fs)
	committed := s.Layout()

	if s.Dirty() {
		t.Fatalf("session dirty before edit")
	}
	s.EnterEdit()
	s.Reset()
	if s.Mode() != Editing {
		t.Errorf("mode after reset = %v, want still Editing", s.Mode())
	}
	s.Cancel()

	if s.Mode() != Viewing {
		t.Errorf("mode after cancel = %v, want Viewing", s.Mode())
	}
	if !grid.SetsStructurallyEqual(committed, s.Layout()) {
		t.Errorf("reset-then-cancel did not restore the committed layout")
	}
	if fs.puts != 0 {
		t.Errorf("reset-then-cancel reached the store (%d puts)", fs.puts)
	}
}

func TestResetClearsHiddenAndRestoresDefaults(t *testing.T) {
	fs := &fakeStore{
		record: &store.Record{
			PageKey:      "module:pharmacy:inventory",
			HiddenBlocks: []string{"stats"},
		},
	}
	s := newTestSession(t, fs)

	s.EnterEdit()
	s.Reset()

	if len(s.Hidden()) != 0 {
		t.Errorf("hidden after reset = %v, want empty", s.Hidden())
	}
	defaults := grid.BuildDefaults(sessionBlocks())
	if !grid.SetsStructurallyEqual(s.Layout(), defaults) {
		t.Errorf("layout after reset differs from defaults")
	}
	if !s.Dirty() {
		t.Errorf("reset away from saved state should be dirty")
	}
}

func TestToggleHiddenRequiredBlockIsNoOp(t *testing.T) {
	s := newTestSession(t, &fakeStore{})

	s.EnterEdit()
	s.ToggleHidden("header") // required
	s.ToggleHidden("no-such-block")

	if len(s.Hidden()) != 0 {
		t.Errorf("hidden = %v, want empty", s.Hidden())
	}
}

func TestHiddenGeometrySurvivesDelta(t *testing.T) {
	s := newTestSession(t, &fakeStore{})

	s.EnterEdit()
	// Move stats somewhere distinctive, then hide it.
	s.ApplyLayoutDelta(grid.Set{
		grid.Large: {
			{ID: "header", X: 0, Y: 0, W: 12, H: 4},
			{ID: "table", X: 0, Y: 4, W: 6, H: 12},
			{ID: "stats", X: 6, Y: 4, W: 6, H: 6},
		},
	})
	s.ToggleHidden("stats")

	// The drag UI reports only visible blocks from now on. The new table
	// geometry leaves the hidden stats rectangle untouched.
	s.ApplyLayoutDelta(grid.Set{
		grid.Large: {
			{ID: "header", X: 0, Y: 0, W: 12, H: 4},
			{ID: "table", X: 0, Y: 4, W: 6, H: 18},
		},
	})
	s.Restore("stats")

	var stats *grid.Item
	layout := s.Layout()[grid.Large]
	for i := range layout {
		if layout[i].ID == "stats" {
			stats = &layout[i]
		}
	}
	if stats == nil {
		t.Fatalf("stats lost after hide/restore: %+v", layout)
	}
	if stats.X != 6 || stats.W != 6 {
		t.Errorf("stats geometry = %+v, want last known x=6 w=6", stats)
	}
}

func TestStaleSaveIsDiscardedAfterCancel(t *testing.T) {
	gate := make(chan struct{})
	fs := &fakeStore{putGate: gate}
	s := newTestSession(t, fs)
	committed := s.Layout()

	s.EnterEdit()
	s.ApplyLayoutDelta(grid.Set{
		grid.Large: {
			{ID: "header", X: 0, Y: 0, W: 12, H: 4},
			{ID: "table", X: 0, Y: 4, W: 3, H: 3},
		},
	})

	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background()) }()

	// Let the save reach the store, then cancel while it is in flight.
	time.Sleep(10 * time.Millisecond)
	// Cancel is blocked by Save holding no lock during Put, so this runs.
	s.Cancel()
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if s.Mode() != Viewing {
		t.Errorf("mode = %v, want Viewing", s.Mode())
	}
	if !grid.SetsStructurallyEqual(committed, s.Layout()) {
		t.Errorf("stale save overwrote the cancelled state")
	}
}

func TestDeltaDuringSaveStaysDirty(t *testing.T) {
	gate := make(chan struct{})
	fs := &fakeStore{putGate: gate}
	s := newTestSession(t, fs)

	s.EnterEdit()
	s.ApplyLayoutDelta(grid.Set{
		grid.Large: {
			{ID: "header", X: 0, Y: 0, W: 12, H: 4},
			{ID: "table", X: 0, Y: 4, W: 6, H: 12},
			{ID: "stats", X: 6, Y: 4, W: 6, H: 6},
		},
	})

	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background()) }()

	// Narrow the table while the put is in flight, then let it complete.
	time.Sleep(10 * time.Millisecond)
	s.ApplyLayoutDelta(grid.Set{
		grid.Large: {
			{ID: "header", X: 0, Y: 0, W: 12, H: 4},
			{ID: "table", X: 0, Y: 4, W: 3, H: 12},
			{ID: "stats", X: 6, Y: 4, W: 6, H: 6},
		},
	})
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if s.Mode() != Editing {
		t.Errorf("mode = %v, want still Editing", s.Mode())
	}
	if !s.Dirty() {
		t.Errorf("session clean although the narrowed table was never sent")
	}
	// The store holds the snapshot width, the working copy the newer one.
	for _, it := range fs.record.Layout[grid.Large] {
		if it.ID == "table" && it.W != 6 {
			t.Errorf("persisted table w = %d, want 6", it.W)
		}
	}
	for _, it := range s.Layout()[grid.Large] {
		if it.ID == "table" && it.W != 3 {
			t.Errorf("active table w = %d, want 3", it.W)
		}
	}
}

func TestSetBlocksDropsRemovedBlock(t *testing.T) {
	s := newTestSession(t, &fakeStore{})

	blocks := sessionBlocks()[:2] // stats removed, e.g. permission revoked
	s.SetBlocks(blocks)

	for _, it := range s.Layout()[grid.Large] {
		if it.ID == "stats" {
			t.Errorf("removed block still present in layout")
		}
	}
}
