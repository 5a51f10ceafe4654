// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"gradleusage/internal/logging"
	"gradleusage/internal/usage"
)

// maxWarnings is how many recent warnings the progress view keeps on screen.
const maxWarnings = 5

// FoundMsg reports a newly discovered project root.
type FoundMsg struct {
	Path string
}

// ResolvedMsg reports a project whose version has been resolved.
type ResolvedMsg struct {
	Project usage.Project
}

// DoneMsg ends the progress display.
type DoneMsg struct {
	Err error
}

// logEntryMsg delivers one entry from the logging channel.
type logEntryMsg struct {
	entry logging.LogEntry
}

// ProgressModel shows scan and resolution progress plus recent warnings while
// the pipeline runs.
type ProgressModel struct {
	styles   *Styles
	spinner  spinner.Model
	entries  <-chan logging.LogEntry
	found    int
	resolved int
	current  string
	warnings []string
	done     bool
	err      error

	// OnInterrupt, if set, is called when the user presses ctrl+c.
	OnInterrupt func()
}

// NewProgressModel creates a progress model. entries may be nil, in which case
// no warnings are shown.
func NewProgressModel(theme string, entries <-chan logging.LogEntry) ProgressModel {
	styles := NewStyles(theme)
	return ProgressModel{
		styles:  styles,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.SpinnerStyle())),
		entries: entries,
	}
}

// Init starts the spinner and the log consumer.
func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEntry(m.entries))
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FoundMsg:
		m.found++
		return m, nil

	case ResolvedMsg:
		m.resolved++
		m.current = msg.Project.Path
		return m, nil

	case logEntryMsg:
		if msg.entry.IsProblem() {
			m.warnings = append(m.warnings, msg.entry.Message+formatPath(msg.entry))
			if len(m.warnings) > maxWarnings {
				m.warnings = m.warnings[len(m.warnings)-maxWarnings:]
			}
		}
		return m, waitForEntry(m.entries)

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.OnInterrupt != nil {
				m.OnInterrupt()
			}
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.done {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Scanning: %d projects found, %d resolved\n", m.spinner.View(), m.found, m.resolved)
	if m.current != "" {
		sb.WriteString(m.styles.HelpStyle().Render("  " + m.current))
		sb.WriteByte('\n')
	}
	for _, w := range m.warnings {
		sb.WriteString(m.styles.WarningStyle().Render("  ! " + w))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Found returns the number of discovered project roots.
func (m ProgressModel) Found() int { return m.found }

// Resolved returns the number of resolved projects.
func (m ProgressModel) Resolved() int { return m.resolved }

// Warnings returns the warnings currently on screen, oldest first.
func (m ProgressModel) Warnings() []string { return m.warnings }

// Err returns the error carried by DoneMsg.
func (m ProgressModel) Err() error { return m.err }

func formatPath(entry logging.LogEntry) string {
	if path, ok := entry.Fields["path"]; ok {
		return fmt.Sprintf(": %v", path)
	}
	return ""
}

// waitForEntry blocks on the next log entry. A closed channel ends the loop.
func waitForEntry(entries <-chan logging.LogEntry) tea.Cmd {
	if entries == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-entries
		if !ok {
			return nil
		}
		return logEntryMsg{entry: entry}
	}
}
