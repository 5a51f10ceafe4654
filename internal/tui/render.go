// pattern: Functional Core

package tui

import (
	"strings"

	"gradleusage/internal/probe"
	"gradleusage/internal/report"
)

// RenderReport styles report lines for a terminal. Stripped of escape
// sequences the result equals the lines joined by newlines, so the column
// layout of the plain report is kept.
func RenderReport(lines []string, theme string) string {
	styles := NewStyles(theme)

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch {
		case i == 0:
			sb.WriteString(styles.TitleStyle().Render(line))
		case line == report.SummaryHeader:
			sb.WriteString(styles.SubtitleStyle().Render(line))
		default:
			sb.WriteString(renderEntry(styles, line))
		}
	}
	return sb.String()
}

// renderEntry colors the version column of a project or summary line.
func renderEntry(styles *Styles, line string) string {
	start := len(line) - len(strings.TrimLeft(line, " "))
	end := strings.IndexByte(line[start:], ' ')
	if end < 0 {
		end = len(line)
	} else {
		end += start
	}
	if start == end {
		return line
	}

	version := line[start:end]
	style := styles.AccentStyle()
	switch version {
	case probe.Unknown:
		style = styles.WarningStyle()
	case probe.Failed:
		style = styles.ErrorStyle()
	}
	return line[:start] + style.Render(version) + styles.InfoStyle().Render(line[end:])
}
