package report

import (
	"fmt"
	"strings"

	"vreport/internal/data/history"
	"vreport/internal/engine/menu"
	"vreport/internal/engine/results"
)

func RenderRunsTSV(runs []history.Run) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("ID\tCreatedAt\tOwner\tRepository\tPR\tBranch\tExpectationCommit\tActualCommit\tFailures\tComponents\tSkipped\tDuplicates\tDeltaFailures\n")
	for i, run := range runs {
		// Runs are listed newest first, so the delta compares against the next row.
		delta := 0
		if i+1 < len(runs) {
			delta = run.FailureCount - runs[i+1].FailureCount
		}
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			run.RepositoryOwner,
			run.RepositoryName,
			run.PRNumber,
			run.BranchName,
			run.ExpectationCommit,
			run.ActualCommit,
			run.FailureCount,
			run.ComponentCount,
			run.SkippedCount,
			run.DuplicateCount,
			delta,
		))
	}

	return []byte(buf.String()), nil
}

// TreeTSV lists the tree leaves in canonical order, one row per result.
func TreeTSV(tree menu.Tree) string {
	var buf strings.Builder

	buf.WriteString("Component\tStory\tBrowser\tViewport\tID\n")
	for _, component := range tree {
		for _, story := range component.Stories {
			for _, vp := range story.Viewports {
				buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
					component.ComponentTagName,
					results.StoryDisplayName(story.StoryName),
					vp.BrowserName,
					vp.ViewportType,
					vp.ID,
				))
			}
		}
	}

	return buf.String()
}
