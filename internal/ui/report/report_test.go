package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"vreport/internal/core/errors"
	"vreport/internal/core/ports"
	"vreport/internal/data/history"
	"vreport/internal/engine/menu"
	"vreport/internal/engine/navigation"
	"vreport/internal/engine/results"
)

func init() {
	color.NoColor = true
}

func record(component, story string, viewport results.Viewport, browser results.Browser) results.Record {
	return results.Record{
		ID:               results.BuildID(component, story, viewport, browser),
		ComponentTagName: component,
		StoryName:        story,
		ViewportType:     viewport,
		BrowserName:      browser,
		Screenshots: results.Screenshots{
			ExpectationScreenshotURL: "https://shots.example/expectation.png",
			ActualScreenshotURL:      "https://shots.example/actual.png",
			DiffScreenshotURL:        "https://shots.example/diff.png",
		},
	}
}

func sampleRecords() []results.Record {
	return []results.Record{
		record("cc-input", "defaultStory", results.ViewportDesktop, results.BrowserChrome),
		record("cc-button", "variantB", results.ViewportMobile, results.BrowserChrome),
		record("cc-button", "defaultStory", results.ViewportDesktop, results.BrowserChrome),
	}
}

func sampleReport() results.Report {
	rep := results.Report{
		RepositoryOwner:     "acme",
		RepositoryName:      "components",
		PRNumber:            "42",
		BranchName:          "feature/buttons",
		ExpectationMetadata: results.Metadata{CommitReference: "1234567890abcdef"},
		ActualMetadata:      results.Metadata{CommitReference: "fedcba0987654321"},
	}
	return rep.WithResults(sampleRecords())
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatText,
		"TEXT":     FormatText,
		"json":     FormatJSON,
		"yml":      FormatYAML,
		"tsv":      FormatTSV,
		" md ":     FormatMarkdown,
		"markdown": FormatMarkdown,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestTreeText(t *testing.T) {
	out, err := NewRenderer(FormatText).Tree(menu.BuildTree(sampleRecords()))
	require.NoError(t, err)

	text := string(out)
	assert.Less(t, strings.Index(text, "cc-button"), strings.Index(text, "cc-input"))
	assert.Less(t, strings.Index(text, "Default Story"), strings.Index(text, "Variant B"))
	assert.Contains(t, text, "cc-button-default-story-desktop-chrome")
}

func TestTreeTextEmpty(t *testing.T) {
	out, err := NewRenderer(FormatText).Tree(menu.BuildTree(nil))
	require.NoError(t, err)
	assert.Equal(t, "No visual changes.\n", string(out))
}

func TestTreeTSV(t *testing.T) {
	out, err := NewRenderer(FormatTSV).Tree(menu.BuildTree(sampleRecords()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Component\tStory\tBrowser\tViewport\tID", lines[0])
	assert.Equal(t, "cc-button\tDefault Story\tchrome\tdesktop\tcc-button-default-story-desktop-chrome", lines[1])
}

func TestTreeYAML(t *testing.T) {
	out, err := NewRenderer(FormatYAML).Tree(menu.BuildTree(sampleRecords()))
	require.NoError(t, err)

	var decoded menu.Tree
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "cc-button", decoded[0].ComponentTagName)
	assert.Equal(t, "defaultStory", decoded[0].Stories[0].StoryName)
}

func TestTreeMarkdownUnsupported(t *testing.T) {
	_, err := NewRenderer(FormatMarkdown).Tree(menu.BuildTree(sampleRecords()))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestViewText(t *testing.T) {
	view := navigation.ViewFor(sampleRecords(), "cc-button-variant-b-mobile-chrome")
	out, err := NewRenderer(FormatText).View(view)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Result 2/3")
	assert.Contains(t, text, "> chrome mobile")
	assert.Contains(t, text, "Browser:     chrome (chromium)")
	assert.Contains(t, text, "Previous:    cc-button-default-story-desktop-chrome")
	assert.Contains(t, text, "Next:        cc-input-default-story-desktop-chrome")
	assert.Contains(t, text, "+ cc-input")
	assert.NotContains(t, text, "not found")
}

func TestViewTextFallbackAndEmpty(t *testing.T) {
	out, err := NewRenderer(FormatText).View(navigation.ViewFor(sampleRecords(), "nope"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "Requested result not found")
	assert.Contains(t, string(out), "Result 1/3")

	out, err = NewRenderer(FormatText).View(navigation.ViewFor(nil, ""))
	require.NoError(t, err)
	assert.Equal(t, "No visual changes.\n", string(out))
}

func TestViewJSON(t *testing.T) {
	out, err := NewRenderer(FormatJSON).View(navigation.ViewFor(sampleRecords(), ""))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"activeId": "cc-button-default-story-desktop-chrome"`)
	assert.Contains(t, string(out), `"nextLocation": "?testResultId=cc-button-variant-b-mobile-chrome"`)
}

func TestAggregateText(t *testing.T) {
	out, err := NewRenderer(FormatText).Aggregate(ports.AggregateResult{
		OutputPath: "out/results.json",
		Records:    3,
		Passed:     2,
		Malformed:  []results.SkippedEntry{{Path: "sessions[0]", Reason: results.SkipMissingBrowser}},
		Duplicates: []string{"cc-button-default-story-desktop-chrome"},
	})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Aggregated 3 failing results into out/results.json (2 passed, 0 without outcome)")
	assert.Contains(t, text, "sessions[0]  missing_browser")
	assert.Contains(t, text, "Duplicate ids (1):")

	out, err = NewRenderer(FormatText).Aggregate(ports.AggregateResult{Skipped: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), "expectation update run")
}

func TestPublishText(t *testing.T) {
	out, err := NewRenderer(FormatText).Publish(ports.PublishResult{
		OutputPath: "out/report.json",
		RunID:      "run-1",
		Report:     sampleReport(),
	})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Published acme/components#42 (feature/buttons) to out/report.json")
	assert.Contains(t, text, "3 failing results across 2 components")
	assert.Contains(t, text, "expectation 1234567, actual fedcba0")
	assert.Contains(t, text, "recorded as run run-1")
}

func TestMarkdownGenerate(t *testing.T) {
	md := NewMarkdownGenerator().Generate(sampleReport(), MarkdownOptions{
		ReportURL:   "https://reports.example/pr-42/",
		GeneratedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
	})

	assert.Contains(t, md, "| Failing results | 3 |")
	assert.Contains(t, md, "| Impacted components | 2 |")
	assert.Contains(t, md, "| Actual commit | `fedcba0` |")
	assert.Contains(t, md, "#### `cc-button` (2)")
	assert.Contains(t, md, "[`cc-button-variant-b-mobile-chrome`](https://reports.example/pr-42?testResultId=cc-button-variant-b-mobile-chrome)")
	assert.Contains(t, md, "_Generated 2026-01-15T10:30:00Z_")
	assert.NotContains(t, md, "No visual changes")
}

func TestMarkdownGenerateEmpty(t *testing.T) {
	rep := sampleReport().WithResults(nil)
	md := NewMarkdownGenerator().Generate(rep, MarkdownOptions{})
	assert.Contains(t, md, "No visual changes detected.")
	assert.NotContains(t, md, "### Impacted components")
}

func TestMarkdownCollapsesLargeComponents(t *testing.T) {
	var recs []results.Record
	for _, story := range []string{"a", "b", "c", "d", "e", "f"} {
		recs = append(recs,
			record("cc-grid", story, results.ViewportDesktop, results.BrowserChrome),
			record("cc-grid", story, results.ViewportMobile, results.BrowserChrome),
		)
	}
	rep := sampleReport().WithResults(recs)

	md := NewMarkdownGenerator().Generate(rep, MarkdownOptions{CollapsibleSections: true})
	assert.Contains(t, md, "<summary>12 results</summary>")

	md = NewMarkdownGenerator().Generate(rep, MarkdownOptions{})
	assert.NotContains(t, md, "<details>")
}

func TestReplaceBetweenMarkers(t *testing.T) {
	content := "intro\n<!-- vreport:summary:start -->\nold\n<!-- vreport:summary:end -->\noutro\n"
	got, err := ReplaceBetweenMarkers(content, "summary", "new\n")
	require.NoError(t, err)
	assert.Equal(t, "intro\n<!-- vreport:summary:start -->\nnew\n<!-- vreport:summary:end -->\noutro\n", got)

	_, err = ReplaceBetweenMarkers(content, " ", "x")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = ReplaceBetweenMarkers("no markers", "summary", "x")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	reversed := "<!-- vreport:summary:end -->\n<!-- vreport:summary:start -->\n"
	_, err = ReplaceBetweenMarkers(reversed, "summary", "x")
	assert.Error(t, err)
}

func TestInjectMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comment.md")
	require.NoError(t, os.WriteFile(path, []byte("<!-- vreport:summary:start -->\r\n<!-- vreport:summary:end -->\r\n"), 0o644))

	require.NoError(t, InjectMarkdown(path, "summary", "body"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<!-- vreport:summary:start -->\r\nbody\r\n<!-- vreport:summary:end -->\r\n", string(data))

	err = InjectMarkdown(filepath.Join(t.TempDir(), "missing.md"), "summary", "body")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestRunsRendering(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	runs := []history.Run{
		{ID: "run-2", CreatedAt: base.Add(time.Hour), BranchName: "main", ActualCommit: "abcdef123456", FailureCount: 5, ComponentCount: 2},
		{ID: "run-1", CreatedAt: base, BranchName: "main", FailureCount: 2, ComponentCount: 1},
	}

	out, err := NewRenderer(FormatTSV).Runs(runs)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "\t5\t2\t0\t0\t3"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "\t2\t1\t0\t0\t0"), lines[2])

	out, err = NewRenderer(FormatText).Runs(runs)
	require.NoError(t, err)
	assert.Contains(t, string(out), "abcdef1")
	assert.Contains(t, string(out), "2026-01-15 11:30:00")

	out, err = NewRenderer(FormatText).Runs(nil)
	require.NoError(t, err)
	assert.Equal(t, "No recorded runs.\n", string(out))
}

func TestRunText(t *testing.T) {
	run := history.NewRun(sampleReport(), 1, 0)
	out, err := NewRenderer(FormatText).Run(run)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Repository:  acme/components")
	assert.Contains(t, text, "PR:          #42")
	assert.Contains(t, text, "Commits:     1234567 -> fedcba0")
	assert.Contains(t, text, "Skipped 1 malformed entries, 0 duplicate ids")
	assert.Contains(t, text, "cc-input")
}

func TestComponentFailures(t *testing.T) {
	counts := map[string]int{"cc-input": 1, "cc-button": 3, "cc-badge": 1}

	out, err := NewRenderer(FormatText).ComponentFailures(counts)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "cc-button")
	assert.Contains(t, lines[1], "cc-badge")
	assert.Contains(t, lines[2], "cc-input")

	out, err = NewRenderer(FormatTSV).ComponentFailures(counts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "Component\tRuns\ncc-button\t3\n"))

	out, err = NewRenderer(FormatText).ComponentFailures(nil)
	require.NoError(t, err)
	assert.Equal(t, "No recorded failures.\n", string(out))
}
