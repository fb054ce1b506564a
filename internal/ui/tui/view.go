package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vreport/internal/engine/results"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8FAFC")).
			Background(lipgloss.Color("#1E293B"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	menuStyle = lipgloss.NewStyle().
			PaddingRight(4).
			Width(44)
)

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %s | version %d", m.lastUpdate.Format("15:04:05"), m.version))

	var summary string
	state, ok := m.cursor.State()
	if !ok {
		summary = successStyle.Render("No visual changes")
	} else {
		summary = failStyle.Render(fmt.Sprintf("%d failing results", state.Total))
		if m.duplicates > 0 {
			summary += " | " + warnStyle.Render(fmt.Sprintf("%d duplicate ids", m.duplicates))
		}
		if m.filtered > 0 {
			summary += " | " + statusStyle.Render(fmt.Sprintf("%d filtered", m.filtered))
		}
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Visual Regression Report"), status, summary)
	body := lipgloss.JoinHorizontal(lipgloss.Top, menuStyle.Render(m.renderMenu()), m.renderDetail())
	if !ok {
		body = statusStyle.Render("Nothing to review.")
	}

	return docStyle.Render(header + "\n" + body + "\n\n" + m.help.View(keys))
}

func (m model) renderMenu() string {
	lines := make([]string, 0, len(m.rows))
	for i, r := range m.rows {
		var line string
		switch r.kind {
		case rowComponent:
			line = marker(r.open) + " " + r.label
		case rowStory:
			line = "  " + marker(r.open) + " " + r.label
		case rowViewport:
			line = "      " + r.label
			if r.active {
				line = "    > " + activeStyle.Render(r.label)
			}
		}
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func marker(open bool) string {
	if open {
		return "▾"
	}
	return "▸"
}

func (m model) renderDetail() string {
	active, ok := m.cursor.Active()
	if !ok {
		return ""
	}
	state, _ := m.cursor.State()
	lines := []string{
		activeStyle.Render(fmt.Sprintf("Result %d/%d", state.Index+1, state.Total)),
		fmt.Sprintf("  Component:   %s", active.ComponentTagName),
		fmt.Sprintf("  Story:       %s", results.StoryDisplayName(active.StoryName)),
		fmt.Sprintf("  Viewport:    %s", active.ViewportType),
		fmt.Sprintf("  Browser:     %s (%s)", active.BrowserName, active.BrowserName.Engine()),
		"",
		fmt.Sprintf("  Expectation: %s", active.Screenshots.ExpectationScreenshotURL),
		fmt.Sprintf("  Actual:      %s", active.Screenshots.ActualScreenshotURL),
		fmt.Sprintf("  Diff:        %s", active.Screenshots.DiffScreenshotURL),
	}
	if exp, act := m.report.ExpectationMetadata.ShortCommit(), m.report.ActualMetadata.ShortCommit(); exp != "" || act != "" {
		lines = append(lines, "", statusStyle.Render(fmt.Sprintf("  Commits: %s -> %s", nonEmpty(exp), nonEmpty(act))))
	}
	if m.cursor.Fallback() {
		lines = append(lines, "", warnStyle.Render("  Requested result not found, showing the first one."))
	}
	lines = append(lines, "", statusStyle.Render(fmt.Sprintf("  Previous: %s", state.PreviousID)), statusStyle.Render(fmt.Sprintf("  Next:     %s", state.NextID)))
	return strings.Join(lines, "\n")
}

func nonEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
