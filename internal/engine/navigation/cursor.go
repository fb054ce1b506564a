// # internal/engine/navigation/cursor.go
package navigation

import (
	"vreport/internal/engine/menu"
	"vreport/internal/engine/results"
)

// Cursor bundles one viewer's navigation inputs: the record set, the
// requested id and the accordion. Every mutation recomputes the derived state
// from scratch. A Cursor is not safe for concurrent use.
type Cursor struct {
	records   []results.Record
	tree      menu.Tree
	requested string
	state     State
	ok        bool
	fallback  bool
	accordion Accordion
}

func NewCursor(records []results.Record, activeID string) *Cursor {
	c := &Cursor{}
	c.requested = activeID
	c.Replace(records)
	return c
}

// Replace swaps the record set and keeps the requested id, falling back to
// the first record if it disappeared.
func (c *Cursor) Replace(records []results.Record) {
	c.records = append([]results.Record(nil), records...)
	c.tree = menu.BuildTree(c.records)
	c.recompute()
}

// Select makes id the requested active item.
func (c *Cursor) Select(id string) State {
	c.requested = id
	c.recompute()
	return c.state
}

func (c *Cursor) Next() State {
	if !c.ok {
		return c.state
	}
	return c.Select(c.state.NextID)
}

func (c *Cursor) Previous() State {
	if !c.ok {
		return c.state
	}
	return c.Select(c.state.PreviousID)
}

func (c *Cursor) ToggleComponent(name string) {
	c.accordion = c.accordion.ToggleComponent(name)
}

func (c *Cursor) ToggleStory(name string) {
	c.accordion = c.accordion.ToggleStory(name)
}

func (c *Cursor) recompute() {
	c.state, c.ok = Compute(c.records, c.requested)
	c.fallback = IsFallback(c.state, c.ok, c.requested)
	if c.ok {
		c.accordion = c.accordion.Sync(c.state)
	}
}

// State returns the current state; ok is false when there are no records.
func (c *Cursor) State() (State, bool) { return c.state, c.ok }

// Fallback reports whether the requested id was not found.
func (c *Cursor) Fallback() bool { return c.fallback }

func (c *Cursor) Accordion() Accordion { return c.accordion }

func (c *Cursor) Tree() menu.Tree { return c.tree }

func (c *Cursor) Records() []results.Record { return c.records }

// Active returns the active record.
func (c *Cursor) Active() (results.Record, bool) {
	if !c.ok {
		return results.Record{}, false
	}
	return Find(c.records, c.state.ActiveID)
}
