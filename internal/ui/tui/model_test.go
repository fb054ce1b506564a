package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"vreport/internal/core/ports"
	"vreport/internal/engine/results"
)

func rec(component, story string, viewport results.Viewport) results.Record {
	return results.Record{
		ID:               results.BuildID(component, story, viewport, results.BrowserChrome),
		ComponentTagName: component,
		StoryName:        story,
		ViewportType:     viewport,
		BrowserName:      results.BrowserChrome,
	}
}

func testSnapshot(version int64) ports.Snapshot {
	return ports.Snapshot{
		Version: version,
		Report: results.Report{Results: []results.Record{
			rec("cc-input", "defaultStory", results.ViewportDesktop),
			rec("cc-button", "variantB", results.ViewportMobile),
			rec("cc-button", "variantB", results.ViewportDesktop),
			rec("cc-button", "defaultStory", results.ViewportMobile),
			rec("cc-button", "defaultStory", results.ViewportDesktop),
		}},
	}
}

func press(t *testing.T, m model, msg tea.KeyMsg) model {
	t.Helper()
	updated, _ := m.Update(msg)
	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}
	return state
}

func runes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func activeID(m model) string {
	state, _ := m.cursor.State()
	return state.ActiveID
}

func TestModel_InitialRowsFollowActivePath(t *testing.T) {
	m := initialModel(testSnapshot(1), "")

	if len(m.rows) != 6 {
		t.Fatalf("expected 6 visible rows, got %d: %+v", len(m.rows), m.rows)
	}
	if m.rows[1].label != "Default Story" || !m.rows[1].open {
		t.Fatalf("expected open Default Story row, got %+v", m.rows[1])
	}
	if m.rows[2].label != "desktop - chrome" || !m.rows[2].active {
		t.Fatalf("expected active desktop leaf, got %+v", m.rows[2])
	}
	if m.selected != 2 {
		t.Fatalf("expected highlight on active leaf, got %d", m.selected)
	}
}

func TestModel_NextPreviousWrap(t *testing.T) {
	m := initialModel(testSnapshot(1), "")

	m = press(t, m, runes('n'))
	if got := activeID(m); got != "cc-button-default-story-mobile-chrome" {
		t.Fatalf("expected next result, got %q", got)
	}
	if m.selected != 3 {
		t.Fatalf("expected highlight to follow active leaf, got %d", m.selected)
	}

	m = press(t, m, runes('p'))
	m = press(t, m, runes('p'))
	if got := activeID(m); got != "cc-input-default-story-desktop-chrome" {
		t.Fatalf("expected wraparound to last result, got %q", got)
	}
	if len(m.rows) != 4 || m.rows[0].open || !m.rows[1].open {
		t.Fatalf("expected only cc-input expanded, got %+v", m.rows)
	}
	if m.selected != 3 {
		t.Fatalf("expected highlight on cc-input leaf, got %d", m.selected)
	}
}

func TestModel_EnterTogglesAndSelects(t *testing.T) {
	m := initialModel(testSnapshot(1), "")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(t, m, runes('k'))
	if m.selected != 0 {
		t.Fatalf("expected component row, got %d", m.selected)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.rows) != 2 {
		t.Fatalf("expected collapsed menu, got %+v", m.rows)
	}

	m = press(t, m, runes('j'))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.rows) != 3 || m.rows[2].label != "Default Story" {
		t.Fatalf("expected cc-input expanded, got %+v", m.rows)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.rows) != 4 || m.rows[3].label != "desktop - chrome" {
		t.Fatalf("expected story expanded, got %+v", m.rows)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := activeID(m); got != "cc-input-default-story-desktop-chrome" {
		t.Fatalf("expected leaf selected, got %q", got)
	}
	if !m.rows[3].active {
		t.Fatalf("expected selected leaf marked active, got %+v", m.rows[3])
	}
}

func TestModel_SnapshotReplacesRecords(t *testing.T) {
	m := initialModel(testSnapshot(2), "cc-button-variant-b-desktop-chrome")

	updated, _ := m.Update(snapshotMsg(ports.Snapshot{Version: 1}))
	m = updated.(model)
	if len(m.rows) == 0 {
		t.Fatal("expected stale snapshot to be ignored")
	}

	next := testSnapshot(3)
	next.Report.Results = next.Report.Results[:3]
	updated, _ = m.Update(snapshotMsg(next))
	m = updated.(model)
	if got := activeID(m); got != "cc-button-variant-b-desktop-chrome" {
		t.Fatalf("expected selection kept across reload, got %q", got)
	}
	state, _ := m.cursor.State()
	if state.Total != 3 {
		t.Fatalf("expected 3 records, got %d", state.Total)
	}

	updated, _ = m.Update(snapshotMsg(ports.Snapshot{Version: 4}))
	m = updated.(model)
	if len(m.rows) != 0 {
		t.Fatalf("expected empty menu, got %+v", m.rows)
	}
	if !strings.Contains(m.View(), "No visual changes") {
		t.Fatalf("expected empty state, got %q", m.View())
	}
}

func TestModel_ViewShowsActiveDetail(t *testing.T) {
	m := initialModel(testSnapshot(1), "")
	out := m.View()
	for _, want := range []string{"Visual Regression Report", "5 failing results", "Result 1/5", "Default Story", "chrome (chromium)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestModel_Quit(t *testing.T) {
	m := initialModel(testSnapshot(1), "")
	_, cmd := m.Update(runes('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
