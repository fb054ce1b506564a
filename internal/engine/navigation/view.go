package navigation

import (
	"vreport/internal/engine/menu"
	"vreport/internal/engine/results"
)

// View is everything a presentation layer needs to draw the menu and the
// active item.
type View struct {
	Empty            bool            `json:"empty" yaml:"empty"`
	State            State           `json:"state" yaml:"state"`
	Accordion        Accordion       `json:"accordion" yaml:"accordion"`
	Active           *results.Record `json:"active,omitempty" yaml:"active,omitempty"`
	Menu             []ComponentItem `json:"menu" yaml:"menu"`
	PreviousLocation string          `json:"previousLocation,omitempty" yaml:"previousLocation,omitempty"`
	NextLocation     string          `json:"nextLocation,omitempty" yaml:"nextLocation,omitempty"`

	// Fallback is set when the requested id was not found and the first
	// record is shown instead.
	Fallback bool `json:"fallback" yaml:"fallback"`
	// Version of the result set the view was built from; set by the host.
	Version int64 `json:"version,omitempty" yaml:"version,omitempty"`
}

type ComponentItem struct {
	ComponentTagName string      `json:"componentTagName" yaml:"componentTagName"`
	Open             bool        `json:"open" yaml:"open"`
	Stories          []StoryItem `json:"stories" yaml:"stories"`
}

type StoryItem struct {
	StoryName   string         `json:"storyName" yaml:"storyName"`
	DisplayName string         `json:"displayName" yaml:"displayName"`
	Open        bool           `json:"open" yaml:"open"`
	Viewports   []ViewportItem `json:"viewports" yaml:"viewports"`
}

type ViewportItem struct {
	menu.ViewportEntry `yaml:",inline"`
	Active             bool   `json:"active" yaml:"active"`
	Location           string `json:"location" yaml:"location"`
}

// View renders the cursor's current state.
func (c *Cursor) View() View {
	v := View{
		Empty:     !c.ok,
		State:     c.state,
		Fallback:  c.fallback,
		Accordion: c.accordion,
		Menu:      make([]ComponentItem, 0, len(c.tree)),
	}
	if active, ok := c.Active(); ok {
		v.Active = &active
		v.PreviousLocation = QueryLocation(c.state.PreviousID)
		v.NextLocation = QueryLocation(c.state.NextID)
	}

	for _, component := range c.tree {
		ci := ComponentItem{
			ComponentTagName: component.ComponentTagName,
			Open:             c.accordion.IsComponentOpen(component.ComponentTagName),
			Stories:          make([]StoryItem, 0, len(component.Stories)),
		}
		for _, story := range component.Stories {
			si := StoryItem{
				StoryName:   story.StoryName,
				DisplayName: results.StoryDisplayName(story.StoryName),
				Open:        c.accordion.IsStoryOpen(component.ComponentTagName, story.StoryName),
				Viewports:   make([]ViewportItem, 0, len(story.Viewports)),
			}
			for _, entry := range story.Viewports {
				si.Viewports = append(si.Viewports, ViewportItem{
					ViewportEntry: entry,
					Active:        c.ok && entry.ID == c.state.ActiveID,
					Location:      QueryLocation(entry.ID),
				})
			}
			ci.Stories = append(ci.Stories, si)
		}
		v.Menu = append(v.Menu, ci)
	}
	return v
}

// ViewFor is the stateless form: the view for records with activeID selected.
func ViewFor(records []results.Record, activeID string) View {
	return NewCursor(records, activeID).View()
}
