package results

import "strings"

// Browser names the browser a session ran in.
type Browser string

const (
	BrowserChrome   Browser = "chrome"
	BrowserChromium Browser = "chromium"
	BrowserFirefox  Browser = "firefox"
	BrowserSafari   Browser = "safari"
	BrowserWebkit   Browser = "webkit"
)

var knownBrowsers = []Browser{BrowserChrome, BrowserChromium, BrowserFirefox, BrowserSafari, BrowserWebkit}

// ParseBrowser accepts browser names case-insensitively.
func ParseBrowser(name string) (Browser, bool) {
	normalized := Browser(strings.ToLower(strings.TrimSpace(name)))
	for _, b := range knownBrowsers {
		if b == normalized {
			return b, true
		}
	}
	return "", false
}

// Engine groups browsers that share a rendering engine. chrome and chromium
// report as chromium, safari and webkit as webkit.
func (b Browser) Engine() string {
	switch b {
	case BrowserChrome, BrowserChromium:
		return "chromium"
	case BrowserSafari, BrowserWebkit:
		return "webkit"
	case BrowserFirefox:
		return "gecko"
	default:
		return string(b)
	}
}

// Viewport is the device class a story was rendered at.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

func ParseViewport(name string) (Viewport, bool) {
	switch Viewport(strings.ToLower(strings.TrimSpace(name))) {
	case ViewportDesktop:
		return ViewportDesktop, true
	case ViewportMobile:
		return ViewportMobile, true
	}
	return "", false
}

// DefaultStory is the story that always sorts first within a component.
const DefaultStory = "defaultStory"

type Screenshots struct {
	ExpectationScreenshotURL string `json:"expectationScreenshotUrl" yaml:"expectationScreenshotUrl"`
	ActualScreenshotURL      string `json:"actualScreenshotUrl" yaml:"actualScreenshotUrl"`
	DiffScreenshotURL        string `json:"diffScreenshotUrl" yaml:"diffScreenshotUrl"`
}

// Record is one failing visual comparison, addressable by ID.
type Record struct {
	ID               string      `json:"id" yaml:"id" validate:"required,slug"`
	ComponentTagName string      `json:"componentTagName" yaml:"componentTagName" validate:"required"`
	StoryName        string      `json:"storyName" yaml:"storyName" validate:"required"`
	ViewportType     Viewport    `json:"viewportType" yaml:"viewportType" validate:"required,oneof=desktop mobile"`
	BrowserName      Browser     `json:"browserName" yaml:"browserName" validate:"required,oneof=chrome chromium firefox safari webkit"`
	Screenshots      Screenshots `json:"screenshots" yaml:"screenshots"`
}

// ResultSet is the serialized form written by the aggregate step.
type ResultSet struct {
	Results []Record `json:"results" yaml:"results" validate:"dive"`
}

type Metadata struct {
	CommitReference string `json:"commitReference" yaml:"commitReference"`
	LastUpdated     string `json:"lastUpdated" yaml:"lastUpdated"`
}

// ShortCommit returns the first seven characters of the commit reference.
func (m Metadata) ShortCommit() string {
	if len(m.CommitReference) > 7 {
		return m.CommitReference[:7]
	}
	return m.CommitReference
}

// Report is the envelope published for a pull request run.
type Report struct {
	RepositoryOwner     string   `json:"repositoryOwner" yaml:"repositoryOwner" validate:"required"`
	RepositoryName      string   `json:"repositoryName" yaml:"repositoryName" validate:"required"`
	PRNumber            string   `json:"prNumber" yaml:"prNumber"`
	WorkflowID          string   `json:"workflowId" yaml:"workflowId"`
	BranchName          string   `json:"branchName" yaml:"branchName" validate:"required"`
	ExpectationMetadata Metadata `json:"expectationMetadata" yaml:"expectationMetadata"`
	ActualMetadata      Metadata `json:"actualMetadata" yaml:"actualMetadata"`
	ImpactedComponents  []string `json:"impactedComponents" yaml:"impactedComponents"`
	Results             []Record `json:"results" yaml:"results" validate:"dive"`
}
