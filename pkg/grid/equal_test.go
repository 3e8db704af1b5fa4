package grid

import "testing"

func TestItemsStructurallyEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b []Item
		want bool
	}{
		{
			name: "identical",
			a:    []Item{{ID: "a", X: 0, Y: 0, W: 6, H: 4}},
			b:    []Item{{ID: "a", X: 0, Y: 0, W: 6, H: 4}},
			want: true,
		},
		{
			name: "order independent",
			a: []Item{
				{ID: "a", X: 0, Y: 0, W: 6, H: 4},
				{ID: "b", X: 6, Y: 0, W: 6, H: 4},
			},
			b: []Item{
				{ID: "b", X: 6, Y: 0, W: 6, H: 4},
				{ID: "a", X: 0, Y: 0, W: 6, H: 4},
			},
			want: true,
		},
		{
			name: "constraint fields ignored",
			a:    []Item{{ID: "a", X: 0, Y: 0, W: 6, H: 4, MinH: 2}},
			b:    []Item{{ID: "a", X: 0, Y: 0, W: 6, H: 4, MinH: 9}},
			want: true,
		},
		{
			name: "different geometry",
			a:    []Item{{ID: "a", X: 0, Y: 0, W: 6, H: 4}},
			b:    []Item{{ID: "a", X: 0, Y: 1, W: 6, H: 4}},
			want: false,
		},
		{
			name: "different lengths",
			a:    []Item{{ID: "a", X: 0, Y: 0, W: 6, H: 4}},
			b:    nil,
			want: false,
		},
		{
			name: "both empty",
			a:    nil,
			b:    []Item{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemsStructurallyEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ItemsStructurallyEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetsStructurallyEqual(t *testing.T) {
	a := Set{Large: {{ID: "a", X: 0, Y: 0, W: 6, H: 4}}}
	b := Set{Large: {{ID: "a", X: 0, Y: 0, W: 6, H: 4}}, Small: {}}

	if !SetsStructurallyEqual(a, b) {
		t.Errorf("missing breakpoint should equal empty breakpoint")
	}

	b[Small] = []Item{{ID: "a", X: 0, Y: 0, W: 3, H: 2}}
	if SetsStructurallyEqual(a, b) {
		t.Errorf("sets with differing sm layouts reported equal")
	}
}

func TestHiddenEqual(t *testing.T) {
	a := map[string]struct{}{"x": {}, "y": {}}
	b := map[string]struct{}{"y": {}, "x": {}}
	if !HiddenEqual(a, b) {
		t.Errorf("equal hidden sets reported unequal")
	}
	if HiddenEqual(a, map[string]struct{}{"x": {}}) {
		t.Errorf("unequal hidden sets reported equal")
	}
}

func TestSetCloneIsIndependent(t *testing.T) {
	orig := Set{Large: {{ID: "a", X: 0, Y: 0, W: 6, H: 4}}}
	clone := orig.Clone()
	clone[Large][0].X = 9

	if orig[Large][0].X != 0 {
		t.Errorf("mutating the clone changed the original")
	}
}
