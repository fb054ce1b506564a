package navigation

import (
	"testing"

	"vreport/internal/engine/menu"
	"vreport/internal/engine/results"
)

func TestCursorNextPreviousWrap(t *testing.T) {
	c := NewCursor(buttonRecords(), "")
	state, ok := c.State()
	if !ok || state.Index != 0 {
		t.Fatalf("expected first record active, got %+v", state)
	}
	for i := 0; i < 4; i++ {
		state = c.Next()
	}
	if state.Index != 0 {
		t.Fatalf("expected wraparound to 0, got %d", state.Index)
	}
	state = c.Previous()
	if state.Index != 3 {
		t.Fatalf("expected wraparound to 3, got %d", state.Index)
	}
	if !c.Accordion().IsStoryOpen("cc-button", "variantB") {
		t.Fatalf("expected active path open, got %+v", c.Accordion())
	}
}

func TestCursorNextVisitsEveryIDWithDuplicates(t *testing.T) {
	records := buttonRecords()
	records = append(records, records[0], records[2])
	c := NewCursor(records, records[0].ID)

	want := len(menu.LinearOrder(buttonRecords()))
	visited := map[string]bool{}
	for i := 0; i < want; i++ {
		state := c.Next()
		visited[state.ActiveID] = true
	}
	if len(visited) != want {
		t.Fatalf("expected %d distinct ids visited, got %d: %v", want, len(visited), visited)
	}
	state, _ := c.State()
	if state.ActiveID != records[0].ID {
		t.Fatalf("expected a full lap back to %q, got %q", records[0].ID, state.ActiveID)
	}

	for i := 0; i < want; i++ {
		c.Previous()
	}
	if state, _ = c.State(); state.ActiveID != records[0].ID {
		t.Fatalf("expected previous lap back to %q, got %q", records[0].ID, state.ActiveID)
	}
}

func TestCursorReplaceKeepsSelection(t *testing.T) {
	records := buttonRecords()
	target := results.BuildID("cc-button", "variantB", results.ViewportDesktop, results.BrowserChrome)
	c := NewCursor(records, target)

	c.Replace(append(records, rec("cc-alpha", "defaultStory", results.ViewportDesktop, results.BrowserChrome)))
	state, _ := c.State()
	if state.ActiveID != target {
		t.Fatalf("expected selection kept, got %q", state.ActiveID)
	}
	if state.Total != 5 {
		t.Fatalf("expected 5 records, got %d", state.Total)
	}

	c.Replace(records[:1])
	state, _ = c.State()
	if state.ActiveID != records[0].ID || !c.Fallback() {
		t.Fatalf("expected fallback after removal, got %+v", state)
	}

	c.Replace(nil)
	if _, ok := c.State(); ok {
		t.Fatal("expected no state for empty set")
	}
	if _, ok := c.Active(); ok {
		t.Fatal("expected no active record")
	}
	if s := c.Next(); s.ActiveID != "" {
		t.Fatalf("expected Next on empty cursor to be a no-op, got %+v", s)
	}
}

func TestCursorManualToggleIsOverriddenBySelection(t *testing.T) {
	c := NewCursor(buttonRecords(), "")
	c.ToggleComponent("cc-button")
	if c.Accordion().Component != "" {
		t.Fatalf("expected manual toggle to close the component, got %+v", c.Accordion())
	}
	c.Next()
	if !c.Accordion().IsComponentOpen("cc-button") {
		t.Fatal("expected selection to reopen the active component")
	}
}
