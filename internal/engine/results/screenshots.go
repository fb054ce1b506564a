package results

import (
	"fmt"
	"strings"
)

type ScreenshotType string

const (
	ScreenshotExpectation ScreenshotType = "expectation"
	ScreenshotActual      ScreenshotType = "actual"
	ScreenshotDiff        ScreenshotType = "diff"
)

// ParseScreenshotType accepts the canonical names and their aliases
// (baseline for expectation, changed for actual).
func ParseScreenshotType(name string) (ScreenshotType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "expectation", "baseline":
		return ScreenshotExpectation, true
	case "actual", "changed":
		return ScreenshotActual, true
	case "diff":
		return ScreenshotDiff, true
	}
	return "", false
}

// ScreenshotLocator builds screenshot URLs under a per-branch root:
//
//	{BaseURL}/{Branch}/{browser}/{component-story-viewport-type}.png
type ScreenshotLocator struct {
	BaseURL   string
	Branch    string
	Extension string
}

func (l ScreenshotLocator) URL(browser Browser, componentTagName, storyName string, viewport Viewport, kind ScreenshotType) string {
	ext := l.Extension
	if ext == "" {
		ext = ".png"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := Slug(fmt.Sprintf("%s-%s-%s-%s", componentTagName, storyName, viewport, kind))
	path := Slug(string(browser)) + "/" + name + ext

	root := strings.TrimRight(l.BaseURL, "/")
	if branch := strings.Trim(l.Branch, "/"); branch != "" {
		root += "/" + branch
	}
	if root == "" {
		return path
	}
	return root + "/" + path
}

// Screenshots returns the expectation/actual/diff triple for one record.
func (l ScreenshotLocator) Screenshots(browser Browser, componentTagName, storyName string, viewport Viewport) Screenshots {
	return Screenshots{
		ExpectationScreenshotURL: l.URL(browser, componentTagName, storyName, viewport, ScreenshotExpectation),
		ActualScreenshotURL:      l.URL(browser, componentTagName, storyName, viewport, ScreenshotActual),
		DiffScreenshotURL:        l.URL(browser, componentTagName, storyName, viewport, ScreenshotDiff),
	}
}
