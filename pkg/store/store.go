// Package store defines the persisted layout record and its storage
// backends.
//
// A [Record] is the wholesale unit of persistence: one user's customization
// of one page, overwritten completely on every save. The [Store] interface
// has four implementations:
//   - memory: mutex-guarded map for tests and single-process use
//   - file: one JSON file per record for CLI/desktop deployments
//   - redis: shared storage for multi-instance deployments
//   - mongo: durable document storage
//
// Absent records are reported as (nil, nil), never as an error. A record
// that fails to decode is treated as absent rather than surfaced: the layout
// engine repairs missing state from defaults, so a corrupt blob must not be
// able to wedge a page.
package store

import (
	"context"
	"time"

	"github.com/tmarchal/pagegrid/pkg/grid"
)

// Record is the persisted customization for one page key: the layout per
// breakpoint plus the ids of blocks the user has hidden.
type Record struct {
	PageKey      string     `json:"pageKey"`
	Layout       grid.Set   `json:"layout"`
	HiddenBlocks []string   `json:"hiddenBlocks"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		PageKey: r.PageKey,
		Layout:  r.Layout.Clone(),
	}
	if r.HiddenBlocks != nil {
		out.HiddenBlocks = append([]string(nil), r.HiddenBlocks...)
	}
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// Store is the persistence interface for layout records. The key is an
// opaque namespace string; callers that need per-user isolation prefix the
// page key before it reaches the store.
type Store interface {
	// Get retrieves the record stored under key.
	// Returns (nil, nil) when no record exists.
	Get(ctx context.Context, key string) (*Record, error)

	// Put replaces the record stored under key and returns the stored
	// value with UpdatedAt stamped.
	Put(ctx context.Context, key string, rec Record) (*Record, error)

	// Delete removes the record stored under key, if any.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
