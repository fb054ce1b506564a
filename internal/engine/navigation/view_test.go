package navigation

import (
	"testing"

	"vreport/internal/engine/results"
)

func TestViewForMarksActivePath(t *testing.T) {
	active := results.BuildID("cc-button", "variantB", results.ViewportMobile, results.BrowserChrome)
	v := ViewFor(buttonRecords(), active)

	if v.Empty || v.Active == nil || v.Active.ID != active {
		t.Fatalf("unexpected active %+v", v.Active)
	}
	if len(v.Menu) != 1 || !v.Menu[0].Open {
		t.Fatalf("expected open cc-button entry, got %+v", v.Menu)
	}
	stories := v.Menu[0].Stories
	if stories[0].Open || !stories[1].Open {
		t.Fatalf("expected only variantB open, got %+v", stories)
	}
	if stories[0].DisplayName != "Default Story" {
		t.Fatalf("unexpected display name %q", stories[0].DisplayName)
	}
	activeCount := 0
	for _, s := range stories {
		for _, vp := range s.Viewports {
			if vp.Active {
				activeCount++
			}
		}
	}
	if activeCount != 1 {
		t.Fatalf("expected exactly one active leaf, got %d", activeCount)
	}
	if v.NextLocation != QueryLocation(results.BuildID("cc-button", "defaultStory", results.ViewportDesktop, results.BrowserChrome)) {
		t.Fatalf("unexpected next location %q", v.NextLocation)
	}
}

func TestViewForEmpty(t *testing.T) {
	v := ViewFor(nil, "x")
	if !v.Empty || v.Active != nil || len(v.Menu) != 0 || v.Menu == nil {
		t.Fatalf("unexpected empty view %+v", v)
	}
	if v.NextLocation != "" {
		t.Fatalf("expected no locations, got %q", v.NextLocation)
	}
}
