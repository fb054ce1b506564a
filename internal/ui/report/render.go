// Package report renders trees, navigation views, pipeline results and
// history runs for terminals, pipes and pull request comments.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"vreport/internal/core/errors"
	"vreport/internal/core/ports"
	"vreport/internal/data/history"
	"vreport/internal/engine/menu"
	"vreport/internal/engine/navigation"
	"vreport/internal/engine/results"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTSV      Format = "tsv"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatTSV:
		return FormatTSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	}
	return "", errors.Newf(errors.CodeValidationError, "unknown output format %q (want text, json, yaml, tsv or markdown)", name)
}

var (
	cBold   = color.New(color.Bold).SprintFunc()
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cRed    = color.New(color.FgRed).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cCyan   = color.New(color.FgCyan).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()
)

// Renderer turns domain values into bytes in one output format.
type Renderer struct {
	Format Format
	// ReportURL prefixes result links in markdown output.
	ReportURL string
}

func NewRenderer(format Format) Renderer {
	return Renderer{Format: format}
}

func (r Renderer) Tree(tree menu.Tree) ([]byte, error) {
	switch r.Format {
	case FormatText:
		return []byte(treeText(tree)), nil
	case FormatTSV:
		return []byte(TreeTSV(tree)), nil
	}
	return r.structured(tree, "tree")
}

func (r Renderer) View(view navigation.View) ([]byte, error) {
	if r.Format == FormatText {
		return []byte(viewText(view)), nil
	}
	return r.structured(view, "navigation view")
}

func (r Renderer) Aggregate(res ports.AggregateResult) ([]byte, error) {
	if r.Format == FormatText {
		return []byte(aggregateText(res)), nil
	}
	return r.structured(res, "aggregate result")
}

func (r Renderer) Publish(res ports.PublishResult) ([]byte, error) {
	switch r.Format {
	case FormatText:
		return []byte(publishText(res)), nil
	case FormatMarkdown:
		return []byte(NewMarkdownGenerator().Generate(res.Report, MarkdownOptions{ReportURL: r.ReportURL, CollapsibleSections: true})), nil
	}
	return r.structured(res, "publish result")
}

func (r Renderer) Runs(runs []history.Run) ([]byte, error) {
	switch r.Format {
	case FormatText:
		return []byte(runsText(runs)), nil
	case FormatTSV:
		return RenderRunsTSV(runs)
	}
	return r.structured(runs, "history runs")
}

func (r Renderer) Run(run history.Run) ([]byte, error) {
	switch r.Format {
	case FormatText:
		return []byte(runText(run)), nil
	case FormatMarkdown:
		return []byte(NewMarkdownGenerator().Generate(run.Report, MarkdownOptions{ReportURL: r.ReportURL, CollapsibleSections: true})), nil
	}
	return r.structured(run, "history run")
}

// ComponentFailures renders how many runs each component failed in, most
// frequent first.
func (r Renderer) ComponentFailures(counts map[string]int) ([]byte, error) {
	rows := sortedFailures(counts)
	switch r.Format {
	case FormatText:
		if len(rows) == 0 {
			return []byte("No recorded failures.\n"), nil
		}
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(fmt.Sprintf("%6d  %s\n", row.Runs, cBold(row.ComponentTagName)))
		}
		return []byte(b.String()), nil
	case FormatTSV:
		var b strings.Builder
		b.WriteString("Component\tRuns\n")
		for _, row := range rows {
			b.WriteString(fmt.Sprintf("%s\t%d\n", row.ComponentTagName, row.Runs))
		}
		return []byte(b.String()), nil
	}
	return r.structured(rows, "component failures")
}

type componentFailure struct {
	ComponentTagName string `json:"componentTagName" yaml:"componentTagName"`
	Runs             int    `json:"runs" yaml:"runs"`
}

func sortedFailures(counts map[string]int) []componentFailure {
	rows := make([]componentFailure, 0, len(counts))
	for name, n := range counts {
		rows = append(rows, componentFailure{ComponentTagName: name, Runs: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Runs != rows[j].Runs {
			return rows[i].Runs > rows[j].Runs
		}
		return rows[i].ComponentTagName < rows[j].ComponentTagName
	})
	return rows
}

func (r Renderer) structured(v interface{}, what string) ([]byte, error) {
	var buf bytes.Buffer
	switch r.Format {
	case FormatJSON:
		if err := results.WriteJSON(&buf, v); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "encode "+what)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "encode "+what)
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "encode "+what)
		}
	default:
		return nil, errors.Newf(errors.CodeNotSupported, "%s cannot be rendered as %s", what, r.Format)
	}
	return buf.Bytes(), nil
}

func treeText(tree menu.Tree) string {
	if len(tree) == 0 {
		return cGreen("No visual changes.") + "\n"
	}
	var b strings.Builder
	for _, component := range tree {
		b.WriteString(cBold(component.ComponentTagName) + "\n")
		for _, story := range component.Stories {
			b.WriteString("  " + cCyan(results.StoryDisplayName(story.StoryName)) + "\n")
			for _, vp := range story.Viewports {
				b.WriteString(fmt.Sprintf("    %-8s %-8s %s\n", vp.BrowserName, vp.ViewportType, cDim(vp.ID)))
			}
		}
	}
	return b.String()
}

func viewText(view navigation.View) string {
	if view.Empty {
		return cGreen("No visual changes.") + "\n"
	}
	var b strings.Builder
	for _, component := range view.Menu {
		marker := "+"
		if component.Open {
			marker = "-"
		}
		b.WriteString(fmt.Sprintf("%s %s\n", marker, cBold(component.ComponentTagName)))
		if !component.Open {
			continue
		}
		for _, story := range component.Stories {
			marker = "+"
			if story.Open {
				marker = "-"
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", marker, cCyan(story.DisplayName)))
			if !story.Open {
				continue
			}
			for _, vp := range story.Viewports {
				line := fmt.Sprintf("%s %s", vp.BrowserName, vp.ViewportType)
				if vp.Active {
					b.WriteString("    > " + cBold(line) + "\n")
					continue
				}
				b.WriteString("      " + line + "\n")
			}
		}
	}

	active := view.Active
	b.WriteString("\n")
	if view.Fallback {
		b.WriteString(cYellow("Requested result not found, showing the first one.") + "\n")
	}
	b.WriteString(fmt.Sprintf("Result %d/%d  %s\n", view.State.Index+1, view.State.Total, cBold(active.ID)))
	b.WriteString(fmt.Sprintf("  Component:   %s\n", active.ComponentTagName))
	b.WriteString(fmt.Sprintf("  Story:       %s\n", results.StoryDisplayName(active.StoryName)))
	b.WriteString(fmt.Sprintf("  Browser:     %s (%s)\n", active.BrowserName, active.BrowserName.Engine()))
	b.WriteString(fmt.Sprintf("  Viewport:    %s\n", active.ViewportType))
	b.WriteString(fmt.Sprintf("  Expectation: %s\n", active.Screenshots.ExpectationScreenshotURL))
	b.WriteString(fmt.Sprintf("  Actual:      %s\n", active.Screenshots.ActualScreenshotURL))
	b.WriteString(fmt.Sprintf("  Diff:        %s\n", active.Screenshots.DiffScreenshotURL))
	b.WriteString(fmt.Sprintf("  Previous:    %s\n", cDim(view.State.PreviousID)))
	b.WriteString(fmt.Sprintf("  Next:        %s\n", cDim(view.State.NextID)))
	return b.String()
}

func aggregateText(res ports.AggregateResult) string {
	if res.Skipped {
		return cYellow("Skipped: expectation update run, no results written.") + "\n"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Aggregated %s failing results into %s (%d passed, %d without outcome)\n",
		cBold(fmt.Sprint(res.Records)), res.OutputPath, res.Passed, res.Missing))
	if len(res.Malformed) > 0 {
		b.WriteString(cYellow(fmt.Sprintf("Skipped %d malformed entries:", len(res.Malformed))) + "\n")
		for _, entry := range res.Malformed {
			b.WriteString(fmt.Sprintf("  %s  %s\n", entry.Path, cDim(entry.Reason)))
		}
	}
	if len(res.Duplicates) > 0 {
		b.WriteString(cRed(fmt.Sprintf("Duplicate ids (%d):", len(res.Duplicates))) + "\n")
		for _, id := range res.Duplicates {
			b.WriteString("  " + id + "\n")
		}
	}
	return b.String()
}

func publishText(res ports.PublishResult) string {
	rep := res.Report
	var b strings.Builder
	target := rep.RepositoryOwner + "/" + rep.RepositoryName
	if rep.PRNumber != "" {
		target += "#" + rep.PRNumber
	}
	b.WriteString(fmt.Sprintf("Published %s (%s) to %s\n", cBold(target), rep.BranchName, res.OutputPath))
	status := cGreen("0 failing results")
	if len(rep.Results) > 0 {
		status = cRed(fmt.Sprintf("%d failing results", len(rep.Results)))
	}
	b.WriteString(fmt.Sprintf("  %s across %d components\n", status, len(rep.ImpactedComponents)))
	b.WriteString(fmt.Sprintf("  expectation %s, actual %s\n", nonEmpty(rep.ExpectationMetadata.ShortCommit(), "-"), nonEmpty(rep.ActualMetadata.ShortCommit(), "-")))
	if res.RunID != "" {
		b.WriteString(fmt.Sprintf("  recorded as run %s\n", cDim(res.RunID)))
	}
	return b.String()
}

func runsText(runs []history.Run) string {
	if len(runs) == 0 {
		return "No recorded runs.\n"
	}
	var b strings.Builder
	b.WriteString(cBold(fmt.Sprintf("%-36s  %-20s  %-24s  %-7s  %8s  %10s", "ID", "CREATED", "BRANCH", "COMMIT", "FAILURES", "COMPONENTS")) + "\n")
	for _, run := range runs {
		failures := cGreen(fmt.Sprintf("%8d", run.FailureCount))
		if run.FailureCount > 0 {
			failures = cRed(fmt.Sprintf("%8d", run.FailureCount))
		}
		b.WriteString(fmt.Sprintf("%-36s  %-20s  %-24s  %-7s  %s  %10d\n",
			run.ID,
			run.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			run.BranchName,
			nonEmpty(shortCommit(run.ActualCommit), "-"),
			failures,
			run.ComponentCount,
		))
	}
	return b.String()
}

func runText(run history.Run) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Run %s\n", cBold(run.ID)))
	b.WriteString(fmt.Sprintf("  Created:     %s\n", run.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST")))
	b.WriteString(fmt.Sprintf("  Repository:  %s/%s\n", run.RepositoryOwner, run.RepositoryName))
	if run.PRNumber != "" {
		b.WriteString(fmt.Sprintf("  PR:          #%s\n", run.PRNumber))
	}
	b.WriteString(fmt.Sprintf("  Branch:      %s\n", run.BranchName))
	b.WriteString(fmt.Sprintf("  Commits:     %s -> %s\n", nonEmpty(shortCommit(run.ExpectationCommit), "-"), nonEmpty(shortCommit(run.ActualCommit), "-")))
	b.WriteString(fmt.Sprintf("  Failures:    %d in %d components\n", run.FailureCount, run.ComponentCount))
	if run.SkippedCount > 0 || run.DuplicateCount > 0 {
		b.WriteString(cYellow(fmt.Sprintf("  Skipped %d malformed entries, %d duplicate ids", run.SkippedCount, run.DuplicateCount)) + "\n")
	}
	if len(run.Report.Results) > 0 {
		b.WriteString("\n")
		b.WriteString(treeText(menu.BuildTree(run.Report.Results)))
	}
	return b.String()
}

func shortCommit(ref string) string {
	return results.Metadata{CommitReference: ref}.ShortCommit()
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
