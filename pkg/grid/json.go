package grid

import (
	"encoding/json"
	"math"
)

// wireItem is the JSON form of an Item, compatible with the persisted
// react-grid-layout payload: {"i": "...", "x": 0, "y": 0, "w": 12, "h": 4}.
// Pointer fields distinguish absent values from explicit zeros, and float64
// absorbs fractional values written by older clients.
type wireItem struct {
	I         string   `json:"i"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	W         *float64 `json:"w,omitempty"`
	H         *float64 `json:"h,omitempty"`
	MinH      *float64 `json:"minH,omitempty"`
	MaxH      *float64 `json:"maxH,omitempty"`
	Resizable *bool    `json:"resizable,omitempty"`
}

// MarshalJSON encodes the item in wire form. Geometry fields are always
// emitted; constraints only when set.
func (it Item) MarshalJSON() ([]byte, error) {
	x, y, w, h := float64(it.X), float64(it.Y), float64(it.W), float64(it.H)
	out := wireItem{
		I:         it.ID,
		X:         &x,
		Y:         &y,
		W:         &w,
		H:         &h,
		Resizable: it.Resizable,
	}
	if it.MinH != 0 {
		v := float64(it.MinH)
		out.MinH = &v
	}
	if it.MaxH != 0 {
		v := float64(it.MaxH)
		out.MaxH = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire form. Fractional values are floored, a
// missing width becomes [WidthUnset] (normalized later to the full row), a
// missing height becomes 1, and missing coordinates become 0. An explicit
// width, however nonsensical, is kept as written for Normalize to clamp.
func (it *Item) UnmarshalJSON(data []byte) error {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	it.ID = w.I
	it.X = floorOr(w.X, 0)
	it.Y = floorOr(w.Y, 0)
	it.W = floorOr(w.W, WidthUnset)
	it.H = floorOr(w.H, 1)
	it.MinH = floorOr(w.MinH, 0)
	it.MaxH = floorOr(w.MaxH, 0)
	it.Resizable = w.Resizable
	return nil
}

func floorOr(v *float64, fallback int) int {
	if v == nil {
		return fallback
	}
	return int(math.Floor(*v))
}
