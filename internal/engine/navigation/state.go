// Package navigation derives the active item and its circular neighbours
// from a result set. Nothing here keeps state between calls; hosts recompute
// whenever the records or the requested id change.
package navigation

import (
	"vreport/internal/engine/menu"
	"vreport/internal/engine/results"
)

type State struct {
	ActiveID        string `json:"activeId" yaml:"activeId"`
	ActiveComponent string `json:"activeComponent" yaml:"activeComponent"`
	ActiveStory     string `json:"activeStory" yaml:"activeStory"`
	PreviousID      string `json:"previousId" yaml:"previousId"`
	NextID          string `json:"nextId" yaml:"nextId"`
	// Index is the position of ActiveID among the distinct ids in canonical
	// order.
	Index int `json:"index" yaml:"index"`
	Total int `json:"total" yaml:"total"`
}

// Compute returns the navigation state for activeID over records. Unknown or
// empty ids resolve to the first record in canonical order, giving the same
// state as asking for that id. Records repeating an earlier id are skipped so
// previous/next always move to a different id. ok is false only when records
// is empty.
func Compute(records []results.Record, activeID string) (State, bool) {
	sorted := distinct(menu.Sort(records))
	n := len(sorted)
	if n == 0 {
		return State{}, false
	}

	idx := -1
	for i, rec := range sorted {
		if rec.ID == activeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = 0
	}

	active := sorted[idx]
	return State{
		ActiveID:        active.ID,
		ActiveComponent: active.ComponentTagName,
		ActiveStory:     active.StoryName,
		PreviousID:      sorted[(idx-1+n)%n].ID,
		NextID:          sorted[(idx+1)%n].ID,
		Index:           idx,
		Total:           n,
	}, true
}

// distinct keeps the first record of each id, preserving order.
func distinct(sorted []results.Record) []results.Record {
	seen := make(map[string]struct{}, len(sorted))
	out := sorted[:0]
	for _, rec := range sorted {
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// IsFallback reports whether asking for activeID resolved to another record.
// An empty id is the default selection, not a fallback.
func IsFallback(state State, ok bool, activeID string) bool {
	return ok && activeID != "" && state.ActiveID != activeID
}

// Find returns the record with the given id.
func Find(records []results.Record, id string) (results.Record, bool) {
	for _, rec := range records {
		if rec.ID == id {
			return rec, true
		}
	}
	return results.Record{}, false
}
