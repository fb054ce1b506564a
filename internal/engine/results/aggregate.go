package results

import (
	"fmt"
	"strings"
)

// Skip reasons reported for malformed raw entries.
const (
	SkipMissingBrowser     = "missing_browser"
	SkipMissingTestResults = "missing_test_results"
	SkipMissingName        = "missing_name"
	SkipUnknownBrowser     = "unknown_browser"
	SkipUnknownViewport    = "unknown_viewport"
)

type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type AggregateOptions struct {
	Locator ScreenshotLocator
}

type AggregateResult struct {
	Records []Record
	// Passed counts viewport groups whose first test passed.
	Passed int
	// Missing counts viewport groups with no test outcome.
	Missing int
	Skipped []SkippedEntry
	// Duplicates lists ids emitted more than once, in first-repeat order.
	Duplicates []string
}

// Aggregate flattens raw sessions into failing records, in traversal order:
// session, component, story, viewport. Only the first test of each viewport
// group is considered. Malformed entries are skipped and reported rather than
// failing the run. Records sharing an id are all kept.
func Aggregate(sessions []Session, opts AggregateOptions) AggregateResult {
	var res AggregateResult
	seen := make(map[string]int)

	skip := func(reason string, path ...string) {
		res.Skipped = append(res.Skipped, SkippedEntry{Path: strings.Join(path, "/"), Reason: reason})
	}

	for i, session := range sessions {
		sessionRef := fmt.Sprintf("sessions[%d]", i)
		if session.Browser == nil || strings.TrimSpace(session.Browser.Name) == "" {
			skip(SkipMissingBrowser, sessionRef)
			continue
		}
		browser, ok := ParseBrowser(session.Browser.Name)
		if !ok {
			skip(SkipUnknownBrowser, sessionRef, session.Browser.Name)
			continue
		}
		if session.TestResults == nil {
			skip(SkipMissingTestResults, string(browser))
			continue
		}

		for _, component := range session.TestResults.Suites {
			if strings.TrimSpace(component.Name) == "" {
				skip(SkipMissingName, string(browser), "?")
				continue
			}
			for _, story := range component.Suites {
				if strings.TrimSpace(story.Name) == "" {
					skip(SkipMissingName, string(browser), component.Name, "?")
					continue
				}
				for _, group := range story.Suites {
					viewport, ok := ParseViewport(group.Name)
					if !ok {
						reason := SkipUnknownViewport
						if strings.TrimSpace(group.Name) == "" {
							reason = SkipMissingName
						}
						skip(reason, string(browser), component.Name, story.Name, group.Name)
						continue
					}
					if len(group.Tests) == 0 || group.Tests[0] == nil {
						res.Missing++
						continue
					}
					if group.Tests[0].Passed {
						res.Passed++
						continue
					}

					rec := Record{
						ID:               BuildID(component.Name, story.Name, viewport, browser),
						ComponentTagName: component.Name,
						StoryName:        story.Name,
						ViewportType:     viewport,
						BrowserName:      browser,
						Screenshots:      opts.Locator.Screenshots(browser, component.Name, story.Name, viewport),
					}
					seen[rec.ID]++
					if seen[rec.ID] == 2 {
						res.Duplicates = append(res.Duplicates, rec.ID)
					}
					res.Records = append(res.Records, rec)
				}
			}
		}
	}
	return res
}

// DuplicateIDs returns the ids that occur more than once in records.
func DuplicateIDs(records []Record) []string {
	seen := make(map[string]int, len(records))
	var dups []string
	for _, rec := range records {
		seen[rec.ID]++
		if seen[rec.ID] == 2 {
			dups = append(dups, rec.ID)
		}
	}
	return dups
}
