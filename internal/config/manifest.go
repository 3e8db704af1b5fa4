package config

import (
	"os"

	"github.com/BurntSushi/toml"

	pgerrors "github.com/tmarchal/pagegrid/pkg/errors"
	"github.com/tmarchal/pagegrid/pkg/grid"
)

// Manifest describes the blocks of one console page: their default
// placements per breakpoint and their layout constraints. The preview
// command renders it; the frontends ship the equivalent descriptors in
// their page modules.
type Manifest struct {
	Page   string          `toml:"page"`
	Blocks []ManifestBlock `toml:"blocks"`
}

// ManifestBlock is one block entry in a manifest.
type ManifestBlock struct {
	ID        string                       `toml:"id"`
	Title     string                       `toml:"title"`
	Required  bool                         `toml:"required"`
	MinH      int                          `toml:"min_h"`
	MaxH      int                          `toml:"max_h"`
	Resizable *bool                        `toml:"resizable"`
	Defaults  map[string]ManifestPlacement `toml:"defaults"`
}

// ManifestPlacement is a default placement for one breakpoint.
type ManifestPlacement struct {
	X int `toml:"x"`
	Y int `toml:"y"`
	W int `toml:"w"`
	H int `toml:"h"`
}

// LoadManifest reads a page blocks manifest from a TOML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidConfig, err, "read manifest %s", path)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidConfig, err, "parse manifest %s", path)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for malformed entries.
func (m *Manifest) Validate() error {
	if err := pgerrors.ValidatePageKey(m.Page); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(m.Blocks))
	for _, b := range m.Blocks {
		if err := pgerrors.ValidateBlockID(b.ID); err != nil {
			return err
		}
		if _, dup := seen[b.ID]; dup {
			return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "duplicate block %q in manifest", b.ID)
		}
		seen[b.ID] = struct{}{}
		for bp := range b.Defaults {
			if !grid.Breakpoint(bp).Valid() {
				return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "block %q: unknown breakpoint %q", b.ID, bp)
			}
		}
	}
	return nil
}

// GridBlocks converts the manifest entries into block descriptors.
func (m *Manifest) GridBlocks() []grid.Block {
	blocks := make([]grid.Block, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		gb := grid.Block{
			ID:        b.ID,
			Title:     b.Title,
			Required:  b.Required,
			MinH:      b.MinH,
			MaxH:      b.MaxH,
			Resizable: b.Resizable,
		}
		if len(b.Defaults) > 0 {
			gb.Defaults = make(map[grid.Breakpoint]grid.Placement, len(b.Defaults))
			for bp, p := range b.Defaults {
				gb.Defaults[grid.Breakpoint(bp)] = grid.Placement{X: p.X, Y: p.Y, W: p.W, H: p.H}
			}
		}
		blocks = append(blocks, gb)
	}
	return blocks
}
