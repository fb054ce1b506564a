// Package menu orders result records and groups them into the
// component > story > viewport tree shown by the navigation views.
package menu

import (
	"sort"

	"vreport/internal/engine/results"
)

type ViewportEntry struct {
	ViewportType results.Viewport `json:"viewportType" yaml:"viewportType"`
	BrowserName  results.Browser  `json:"browserName" yaml:"browserName"`
	ID           string           `json:"id" yaml:"id"`
}

type Story struct {
	StoryName string          `json:"storyName" yaml:"storyName"`
	Viewports []ViewportEntry `json:"viewports" yaml:"viewports"`
}

type Component struct {
	ComponentTagName string  `json:"componentTagName" yaml:"componentTagName"`
	Stories          []Story `json:"stories" yaml:"stories"`
}

type Tree []Component

// Less reports whether a sorts before b: component, then story with
// DefaultStory first, then browser, then viewport.
func Less(a, b results.Record) bool {
	if a.ComponentTagName != b.ComponentTagName {
		return a.ComponentTagName < b.ComponentTagName
	}
	if a.StoryName != b.StoryName {
		if a.StoryName == results.DefaultStory {
			return true
		}
		if b.StoryName == results.DefaultStory {
			return false
		}
		return a.StoryName < b.StoryName
	}
	if a.BrowserName != b.BrowserName {
		return a.BrowserName < b.BrowserName
	}
	return a.ViewportType < b.ViewportType
}

// Sort returns a sorted copy of records. Equal keys keep their input order.
func Sort(records []results.Record) []results.Record {
	sorted := append([]results.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j])
	})
	return sorted
}

// LinearOrder returns record ids in canonical order.
func LinearOrder(records []results.Record) []string {
	sorted := Sort(records)
	ids := make([]string, len(sorted))
	for i, rec := range sorted {
		ids[i] = rec.ID
	}
	return ids
}

// BuildTree sorts records and groups them in a single pass. Because the input
// is sorted, a new component or story entry starts exactly when the key
// changes from the previous record.
func BuildTree(records []results.Record) Tree {
	tree := Tree{}
	for _, rec := range Sort(records) {
		if n := len(tree); n == 0 || tree[n-1].ComponentTagName != rec.ComponentTagName {
			tree = append(tree, Component{ComponentTagName: rec.ComponentTagName})
		}
		component := &tree[len(tree)-1]

		if n := len(component.Stories); n == 0 || component.Stories[n-1].StoryName != rec.StoryName {
			component.Stories = append(component.Stories, Story{StoryName: rec.StoryName})
		}
		story := &component.Stories[len(component.Stories)-1]

		story.Viewports = append(story.Viewports, ViewportEntry{
			ViewportType: rec.ViewportType,
			BrowserName:  rec.BrowserName,
			ID:           rec.ID,
		})
	}
	return tree
}

// Flatten returns the leaf ids of the tree in depth-first order.
func (t Tree) Flatten() []string {
	var ids []string
	for _, c := range t {
		for _, s := range c.Stories {
			for _, v := range s.Viewports {
				ids = append(ids, v.ID)
			}
		}
	}
	return ids
}

// Len returns the number of leaves.
func (t Tree) Len() int {
	n := 0
	for _, c := range t {
		for _, s := range c.Stories {
			n += len(s.Viewports)
		}
	}
	return n
}
