package results

import "testing"

func TestFilter(t *testing.T) {
	f, err := NewFilter([]string{"cc-button*", "cc-input"}, []string{"cc-button-group"})
	if err != nil {
		t.Fatalf("new filter: %v", err)
	}
	cases := map[string]bool{
		"cc-button":       true,
		"cc-button-menu":  true,
		"cc-button-group": false,
		"cc-input":        true,
		"cc-toggle":       false,
	}
	for name, want := range cases {
		if got := f.Allows(name); got != want {
			t.Errorf("Allows(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFilterApplyKeepsOrder(t *testing.T) {
	f, err := NewFilter(nil, []string{"cc-input"})
	if err != nil {
		t.Fatalf("new filter: %v", err)
	}
	records := []Record{
		{ID: "a", ComponentTagName: "cc-toggle"},
		{ID: "b", ComponentTagName: "cc-input"},
		{ID: "c", ComponentTagName: "cc-button"},
	}
	got := f.Apply(records)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected filtered records %+v", got)
	}
}

func TestNilFilterAllowsAll(t *testing.T) {
	var f *Filter
	if !f.Allows("anything") {
		t.Fatal("expected nil filter to allow")
	}
}

func TestFilterRejectsBadPattern(t *testing.T) {
	if _, err := NewFilter([]string{"cc-[button"}, nil); err == nil {
		t.Fatal("expected compile error")
	}
}
