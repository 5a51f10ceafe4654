// pattern: Functional Core

// Package report renders the usage inventory and its per-version summary.
package report

import (
	"cmp"
	"fmt"
	"slices"

	"gradleusage/internal/usage"
)

// SummaryHeader separates the project listing from the per-version counts.
const SummaryHeader = "Summary"

// VersionCount is the number of projects using one version string.
type VersionCount struct {
	Version string
	Count   int
}

// Build renders projects as report lines: a header, one line per project in
// the given order, then the summary. Version columns in both sections share
// the width of the longest version string.
func Build(projects []usage.Project) []string {
	width := Width(projects)
	summary := Summarize(projects)

	lines := make([]string, 0, len(projects)+len(summary)+2)
	lines = append(lines, fmt.Sprintf("Found %d Gradle projects", len(projects)))
	for _, p := range projects {
		lines = append(lines, fmt.Sprintf("  %*s  %s", width, p.Version, p.Path))
	}
	lines = append(lines, SummaryHeader)
	for _, vc := range summary {
		lines = append(lines, fmt.Sprintf("  %*s used by %d projects", width, vc.Version, vc.Count))
	}
	return lines
}

// Width returns the length of the longest version string, 0 for no projects.
func Width(projects []usage.Project) int {
	width := 0
	for _, p := range projects {
		width = max(width, len(p.Version))
	}
	return width
}

// Summarize counts projects per version, most used first. Equal counts are
// ordered by version string.
func Summarize(projects []usage.Project) []VersionCount {
	counts := make(map[string]int)
	for _, p := range projects {
		counts[p.Version]++
	}

	summary := make([]VersionCount, 0, len(counts))
	for version, n := range counts {
		summary = append(summary, VersionCount{Version: version, Count: n})
	}
	slices.SortFunc(summary, func(a, b VersionCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Version, b.Version)
	})
	return summary
}
