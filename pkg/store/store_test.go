package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmarchal/pagegrid/pkg/grid"
)

func testRecord() Record {
	return Record{
		PageKey: "module:pharmacy:inventory",
		Layout: grid.Set{
			grid.Large: {
				{ID: "pharmacy-header", X: 0, Y: 0, W: 12, H: 4},
				{ID: "pharmacy-items", X: 0, Y: 4, W: 12, H: 12},
			},
		},
		HiddenBlocks: []string{"pharmacy-stats"},
	}
}

// roundtrip exercises the Store contract shared by every backend.
func roundtrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := "user:alice|module:pharmacy:inventory"

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() before Put: %v", err)
	}
	if got != nil {
		t.Fatalf("Get() before Put = %+v, want nil", got)
	}

	stored, err := s.Put(ctx, key, testRecord())
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if stored.UpdatedAt == nil {
		t.Errorf("Put() did not stamp UpdatedAt")
	}

	got, err = s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() after Put: %v", err)
	}
	if got == nil {
		t.Fatalf("Get() after Put = nil, want record")
	}
	if got.PageKey != "module:pharmacy:inventory" {
		t.Errorf("PageKey = %q", got.PageKey)
	}
	if len(got.Layout[grid.Large]) != 2 {
		t.Errorf("lg layout has %d items, want 2", len(got.Layout[grid.Large]))
	}
	if len(got.HiddenBlocks) != 1 || got.HiddenBlocks[0] != "pharmacy-stats" {
		t.Errorf("HiddenBlocks = %v", got.HiddenBlocks)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	got, err = s.Get(ctx, key)
	if err != nil || got != nil {
		t.Errorf("Get() after Delete = (%+v, %v), want (nil, nil)", got, err)
	}
	// Deleting an absent record is not an error.
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete() of absent record: %v", err)
	}
}

func TestMemoryStoreRoundtrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	roundtrip(t, s)
}

func TestFileStoreRoundtrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()
	roundtrip(t, s)
}

func TestMemoryStoreIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	stored, err := s.Put(ctx, "k", testRecord())
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	stored.Layout[grid.Large][0].X = 99

	got, _ := s.Get(ctx, "k")
	if got.Layout[grid.Large][0].X != 0 {
		t.Errorf("mutating the returned record changed stored state")
	}
}

func TestFileStoreCorruptRecordIsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	ctx := context.Background()

	if _, err := s.Put(ctx, "k", testRecord()); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	// Corrupt the stored file in place.
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		return os.WriteFile(path, []byte("{not json"), 0o600)
	})
	if err != nil {
		t.Fatalf("corrupting record: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() of corrupt record: %v", err)
	}
	if got != nil {
		t.Errorf("Get() of corrupt record = %+v, want nil", got)
	}
}

func TestFileStoreSeparateKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	ctx := context.Background()

	recA := testRecord()
	recB := testRecord()
	recB.PageKey = "module:vehicle:inventory"

	if _, err := s.Put(ctx, "a", recA); err != nil {
		t.Fatalf("Put(a): %v", err)
	}
	if _, err := s.Put(ctx, "b", recB); err != nil {
		t.Fatalf("Put(b): %v", err)
	}

	gotA, _ := s.Get(ctx, "a")
	gotB, _ := s.Get(ctx, "b")
	if gotA.PageKey == gotB.PageKey {
		t.Errorf("keys a and b returned the same record")
	}
}
