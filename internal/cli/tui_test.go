package cli

import (
	"sort"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tmarchal/pagegrid/pkg/registry"
)

func testRegistry() registry.Registry {
	return registry.Registry{
		"home": {
			"home-dashboard": nil,
		},
		"module:pharmacy:inventory": {
			"pharmacy-header": {Module: "pharmacy", Action: registry.ActionView},
			"pharmacy-items":  {Module: "pharmacy", Action: registry.ActionView},
		},
		"admin:users": {
			"admin-users-main": {Module: registry.AdminModule},
		},
	}
}

func TestPageEntriesSortedAndAnnotated(t *testing.T) {
	entries := pageEntries(testRegistry())
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	if !sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key }) {
		t.Error("entries are not sorted by page key")
	}

	byKey := map[string]pageEntry{}
	for _, e := range entries {
		byKey[e.Key] = e
	}

	if e := byKey["admin:users"]; !e.Admin || len(e.Modules) != 0 {
		t.Errorf("admin:users = %+v, want admin-only", e)
	}
	if e := byKey["home"]; e.Admin || len(e.Modules) != 0 || e.Blocks != 1 {
		t.Errorf("home = %+v, want public single block", e)
	}
	if e := byKey["module:pharmacy:inventory"]; e.Blocks != 2 || len(e.Modules) != 1 || e.Modules[0] != "pharmacy" {
		t.Errorf("pharmacy page = %+v", e)
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPageListModelNavigation(t *testing.T) {
	m := NewPageListModel(testRegistry())

	next, _ := m.Update(keyMsg("down"))
	m = next.(PageListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after down = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(keyMsg("up"))
	m = next.(PageListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor after up = %d, want 0", m.Cursor)
	}

	// Cursor must not move past the ends.
	next, _ = m.Update(keyMsg("up"))
	m = next.(PageListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor pinned at top, got %d", m.Cursor)
	}
}

func TestPageListModelSelection(t *testing.T) {
	m := NewPageListModel(testRegistry())

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(PageListModel)
	if m.Selected == "" {
		t.Fatal("enter did not select a page")
	}
	if m.Selected != m.Pages[0].Key {
		t.Errorf("Selected = %q, want %q", m.Selected, m.Pages[0].Key)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestPageListModelEnterOnEmptyList(t *testing.T) {
	m := NewPageListModel(registry.Registry{})

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(PageListModel)
	if m.Selected != "" {
		t.Errorf("Selected = %q, want none", m.Selected)
	}
	if cmd == nil {
		t.Error("enter on an empty list should still quit")
	}
}

func TestPageListModelQuitWithoutSelection(t *testing.T) {
	m := NewPageListModel(testRegistry())

	next, cmd := m.Update(keyMsg("esc"))
	m = next.(PageListModel)
	if m.Selected != "" {
		t.Errorf("esc should not select, got %q", m.Selected)
	}
	if cmd == nil {
		t.Error("esc should quit the program")
	}
}

func TestPageListModelViewRendersRows(t *testing.T) {
	m := NewPageListModel(testRegistry())
	view := m.View()
	if view == "" {
		t.Fatal("View() returned empty string")
	}
}
