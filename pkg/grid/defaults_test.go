package grid

import "testing"

func TestBuildDefaultsStacksVertically(t *testing.T) {
	blocks := []Block{
		{ID: "a", Defaults: map[Breakpoint]Placement{Large: {X: 0, Y: 0, W: 12, H: 4}}},
		{ID: "b", Defaults: map[Breakpoint]Placement{Large: {X: 0, Y: 0, W: 6, H: 6}}},
		{ID: "c"}, // no default placement at all
	}

	got := BuildDefaults(blocks)[Large]
	if len(got) != 3 {
		t.Fatalf("built %d items, want 3: %+v", len(got), got)
	}

	// a at y=0 (h=4), b at y=5 (gutter 1), c at y=12.
	wantY := []int{0, 5, 12}
	for i, y := range wantY {
		if got[i].Y != y {
			t.Errorf("item %s y = %d, want %d", got[i].ID, got[i].Y, y)
		}
	}
	if got[2].W != 12 || got[2].H != DefaultBlockHeight {
		t.Errorf("fallback placement = %+v, want full row at h=%d", got[2], DefaultBlockHeight)
	}
}

func TestBuildDefaultsCoversEveryBreakpoint(t *testing.T) {
	blocks := []Block{{ID: "only"}}
	set := BuildDefaults(blocks)

	for _, bp := range Breakpoints {
		items := set[bp]
		if len(items) != 1 {
			t.Fatalf("%s: %d items, want 1", bp, len(items))
		}
		if items[0].W != bp.Columns() {
			t.Errorf("%s: fallback width %d, want %d columns", bp, items[0].W, bp.Columns())
		}
	}
}

func TestBuildDefaultsCarriesConstraints(t *testing.T) {
	resizable := false
	blocks := []Block{
		{ID: "panel", MinH: 3, MaxH: 10, Resizable: &resizable},
	}

	got := BuildDefaults(blocks)[Large]
	if got[0].MinH != 3 || got[0].MaxH != 10 {
		t.Errorf("constraints = minH:%d maxH:%d, want 3/10", got[0].MinH, got[0].MaxH)
	}
	if got[0].Resizable == nil || *got[0].Resizable {
		t.Errorf("resizable = %v, want false", got[0].Resizable)
	}
}

func TestBuildDefaultsAbsorbsInconsistentPlacement(t *testing.T) {
	blocks := []Block{
		{ID: "wild", Defaults: map[Breakpoint]Placement{Large: {X: -5, Y: 99, W: 40, H: 0}}},
	}

	got := BuildDefaults(blocks)[Large]
	if len(got) != 1 {
		t.Fatalf("built %d items, want 1", len(got))
	}
	it := got[0]
	if it.X != 0 || it.Y != 0 || it.W != 12 || it.H != 1 {
		t.Errorf("normalized placement = %+v, want {0 0 12 1}", it)
	}
}
