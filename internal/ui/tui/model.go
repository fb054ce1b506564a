// # internal/ui/tui/model.go

// Package tui is the terminal host: an accordion menu over the result set
// with the active comparison shown beside it.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"vreport/internal/core/ports"
	"vreport/internal/engine/navigation"
	"vreport/internal/engine/results"
)

type rowKind int

const (
	rowComponent rowKind = iota
	rowStory
	rowViewport
)

// row is one visible line of the menu.
type row struct {
	kind      rowKind
	component string
	story     string
	id        string
	label     string
	open      bool
	active    bool
}

type snapshotMsg ports.Snapshot

type model struct {
	cursor     *navigation.Cursor
	rows       []row
	selected   int
	version    int64
	report     results.Report
	duplicates int
	filtered   int
	lastUpdate time.Time
	width      int
	height     int
	help       help.Model
}

func initialModel(snap ports.Snapshot, activeID string) model {
	m := model{
		cursor:     navigation.NewCursor(snap.Report.Results, activeID),
		version:    snap.Version,
		report:     snap.Report,
		duplicates: len(snap.Duplicates),
		filtered:   snap.Filtered,
		lastUpdate: time.Now(),
		help:       help.New(),
	}
	m.rebuild()
	m.focusActive()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case snapshotMsg:
		// Reloads can race; a snapshot older than the one shown is stale.
		if msg.Version <= m.version {
			return m, nil
		}
		m.version = msg.Version
		m.report = msg.Report
		m.duplicates = len(msg.Duplicates)
		m.filtered = msg.Filtered
		m.lastUpdate = time.Now()
		m.cursor.Replace(msg.Report.Results)
		m.rebuild()
		m.focusActive()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, keys.Down):
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
	case key.Matches(msg, keys.Next):
		m.cursor.Next()
		m.rebuild()
		m.focusActive()
	case key.Matches(msg, keys.Previous):
		m.cursor.Previous()
		m.rebuild()
		m.focusActive()
	case key.Matches(msg, keys.Toggle):
		m.activate()
	}
	return m, nil
}

// activate toggles the highlighted component or story, or selects the
// highlighted leaf.
func (m *model) activate() {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return
	}
	r := m.rows[m.selected]
	switch r.kind {
	case rowComponent:
		m.cursor.ToggleComponent(r.component)
	case rowStory:
		m.cursor.ToggleStory(r.story)
	case rowViewport:
		m.cursor.Select(r.id)
	}
	m.rebuild()
	m.focusRow(r)
}

func (m *model) rebuild() {
	view := m.cursor.View()
	rows := make([]row, 0, len(view.Menu))
	for _, component := range view.Menu {
		rows = append(rows, row{
			kind:      rowComponent,
			component: component.ComponentTagName,
			label:     component.ComponentTagName,
			open:      component.Open,
		})
		if !component.Open {
			continue
		}
		for _, story := range component.Stories {
			rows = append(rows, row{
				kind:      rowStory,
				component: component.ComponentTagName,
				story:     story.StoryName,
				label:     story.DisplayName,
				open:      story.Open,
			})
			if !story.Open {
				continue
			}
			for _, vp := range story.Viewports {
				rows = append(rows, row{
					kind:      rowViewport,
					component: component.ComponentTagName,
					story:     story.StoryName,
					id:        vp.ID,
					label:     string(vp.ViewportType) + " - " + string(vp.BrowserName),
					active:    vp.Active,
				})
			}
		}
	}
	m.rows = rows
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *model) focusActive() {
	for i, r := range m.rows {
		if r.active {
			m.selected = i
			return
		}
	}
}

// focusRow keeps the highlight on the same menu entry after a rebuild.
func (m *model) focusRow(target row) {
	for i, r := range m.rows {
		if r.kind == target.kind && r.component == target.component && r.story == target.story && r.id == target.id {
			m.selected = i
			return
		}
	}
}
