package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"vreport/internal/core/errors"
	"vreport/internal/engine/menu"
	"vreport/internal/engine/navigation"
	"vreport/internal/engine/results"
	"vreport/internal/shared/util"
)

type MarkdownOptions struct {
	// ReportURL is where the web report is served. When set, result ids link
	// to their location in it.
	ReportURL           string
	GeneratedAt         time.Time
	CollapsibleSections bool
}

// MarkdownGenerator writes the pull request comment summarizing a report.
type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(rep results.Report, opts MarkdownOptions) string {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("## Visual regression report\n\n")
	if len(rep.Results) == 0 {
		b.WriteString("No visual changes detected.\n\n")
	}

	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Repository | `%s/%s` |\n", rep.RepositoryOwner, rep.RepositoryName))
	b.WriteString(fmt.Sprintf("| Branch | `%s` |\n", rep.BranchName))
	b.WriteString(fmt.Sprintf("| Expectation commit | `%s` |\n", nonEmpty(rep.ExpectationMetadata.ShortCommit(), "-")))
	b.WriteString(fmt.Sprintf("| Actual commit | `%s` |\n", nonEmpty(rep.ActualMetadata.ShortCommit(), "-")))
	b.WriteString(fmt.Sprintf("| Failing results | %d |\n", len(rep.Results)))
	b.WriteString(fmt.Sprintf("| Impacted components | %d |\n\n", len(rep.ImpactedComponents)))

	if len(rep.Results) > 0 {
		m.writeComponents(&b, menu.BuildTree(rep.Results), opts)
	}

	b.WriteString(fmt.Sprintf("_Generated %s_\n", opts.GeneratedAt.UTC().Format(time.RFC3339)))
	return b.String()
}

func (m *MarkdownGenerator) writeComponents(b *strings.Builder, tree menu.Tree, opts MarkdownOptions) {
	b.WriteString("### Impacted components\n")
	for _, component := range tree {
		rows := make([]string, 0)
		for _, story := range component.Stories {
			for _, vp := range story.Viewports {
				rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s |\n",
					results.StoryDisplayName(story.StoryName),
					vp.BrowserName,
					vp.ViewportType,
					m.resultLink(vp.ID, opts.ReportURL),
				))
			}
		}
		b.WriteString(fmt.Sprintf("\n#### `%s` (%d)\n", component.ComponentTagName, len(rows)))
		m.writeTableWithCollapse(
			b,
			fmt.Sprintf("%d results", len(rows)),
			opts.CollapsibleSections,
			len(rows) > 10,
			[]string{"| Story | Browser | Viewport | Result |\n", "| --- | --- | --- | --- |\n"},
			rows,
		)
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) resultLink(id, reportURL string) string {
	base := strings.TrimRight(strings.TrimSpace(reportURL), "/")
	if base == "" {
		return "`" + id + "`"
	}
	return fmt.Sprintf("[`%s`](%s%s)", id, base, navigation.QueryLocation(id))
}

func (m *MarkdownGenerator) writeTableWithCollapse(
	b *strings.Builder,
	summary string,
	collapsible bool,
	collapse bool,
	header []string,
	rows []string,
) {
	if collapsible && collapse {
		b.WriteString("<details>\n")
		b.WriteString("<summary>")
		b.WriteString(summary)
		b.WriteString("</summary>\n\n")
	}
	for _, line := range header {
		b.WriteString(line)
	}
	for _, line := range rows {
		b.WriteString(line)
	}
	if collapsible && collapse {
		b.WriteString("\n</details>\n")
	}
}

// InjectMarkdown replaces the block between the vreport markers in filePath.
func InjectMarkdown(filePath, marker, content string) error {
	existing, err := os.ReadFile(filePath)
	if err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read markdown file"), errors.CtxPath, filePath)
	}

	next, err := ReplaceBetweenMarkers(string(existing), marker, content)
	if err != nil {
		return errors.AddContext(err, errors.CtxPath, filePath)
	}
	if err := util.WriteFileAtomic(filePath, []byte(next), 0o644); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write markdown file"), errors.CtxPath, filePath)
	}
	return nil
}

func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", errors.New(errors.CodeValidationError, "markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start := fmt.Sprintf("<!-- vreport:%s:start -->", marker)
	end := fmt.Sprintf("<!-- vreport:%s:end -->", marker)

	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", errors.Newf(errors.CodeValidationError, "markdown marker %q must appear exactly once for start and end", marker)
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", errors.Newf(errors.CodeValidationError, "invalid marker order for %q", marker)
	}

	prefix := content[:startIdx+len(start)]
	suffix := content[endIdx:]
	cleanReplacement := strings.TrimRight(replacement, "\r\n")

	return prefix + newline + cleanReplacement + newline + suffix, nil
}
