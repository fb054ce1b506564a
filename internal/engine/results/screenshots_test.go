package results

import "testing"

func TestScreenshotLocatorURL(t *testing.T) {
	l := ScreenshotLocator{BaseURL: "https://visual-tests.example.com/", Branch: "feat/menu"}
	got := l.URL(BrowserChrome, "cc-button", "defaultStory", ViewportDesktop, ScreenshotDiff)
	want := "https://visual-tests.example.com/feat/menu/chrome/cc-button-default-story-desktop-diff.png"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestScreenshotLocatorTriple(t *testing.T) {
	l := ScreenshotLocator{BaseURL: "https://x.test", Branch: "main", Extension: "webp"}
	s := l.Screenshots(BrowserFirefox, "cc-input", "variantB", ViewportMobile)
	if s.ExpectationScreenshotURL != "https://x.test/main/firefox/cc-input-variant-b-mobile-expectation.webp" {
		t.Fatalf("unexpected expectation url %q", s.ExpectationScreenshotURL)
	}
	if s.ActualScreenshotURL != "https://x.test/main/firefox/cc-input-variant-b-mobile-actual.webp" {
		t.Fatalf("unexpected actual url %q", s.ActualScreenshotURL)
	}
	if s.DiffScreenshotURL != "https://x.test/main/firefox/cc-input-variant-b-mobile-diff.webp" {
		t.Fatalf("unexpected diff url %q", s.DiffScreenshotURL)
	}
}

func TestScreenshotLocatorRelative(t *testing.T) {
	var l ScreenshotLocator
	if got := l.URL(BrowserSafari, "cc-toggle", "defaultStory", ViewportMobile, ScreenshotActual); got != "safari/cc-toggle-default-story-mobile-actual.png" {
		t.Fatalf("got %q", got)
	}
}

func TestParseScreenshotTypeAliases(t *testing.T) {
	if st, ok := ParseScreenshotType("baseline"); !ok || st != ScreenshotExpectation {
		t.Fatalf("baseline: got %q %v", st, ok)
	}
	if st, ok := ParseScreenshotType("changed"); !ok || st != ScreenshotActual {
		t.Fatalf("changed: got %q %v", st, ok)
	}
	if _, ok := ParseScreenshotType("thumbnail"); ok {
		t.Fatal("expected unknown type to be rejected")
	}
}
