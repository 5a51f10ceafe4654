// pattern: Functional Core
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(ctx context.Context, args []string) error
}

// UsageError marks a command-line mistake; Execute prints the command usage
// and exits with ExitUsage.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// App represents the top-level CLI application.
type App struct {
	commands       map[string]*Command
	defaultCommand string
	version        string

	// GlobalUsage is printed under "Options:" in the top-level help.
	GlobalUsage string

	Stdout io.Writer
	Stderr io.Writer
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		commands: make(map[string]*Command),
		version:  version,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// AddCommand registers a top-level command.
func (a *App) AddCommand(cmd *Command) {
	a.commands[cmd.Name] = cmd
}

// SetDefault selects the command run when no command name is given. Its
// flags may then be passed directly.
func (a *App) SetDefault(name string) {
	a.defaultCommand = name
}

// Execute dispatches the CLI arguments to the appropriate command and
// returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		a.PrintHelp(a.Stdout)
		return ExitOK
	}

	cmd, rest := a.lookup(args)
	if cmd == nil {
		if len(args) > 0 {
			fmt.Fprintf(a.Stderr, "unknown command %q\n\n", args[0])
		}
		a.PrintHelp(a.Stderr)
		return ExitUsage
	}

	err := cmd.Run(ctx, rest)
	if err == nil {
		return ExitOK
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(a.Stderr, "Error: %v\n%s\n", usageErr.Err, cmd.Usage)
		return ExitUsage
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(a.Stderr, "Interrupted")
		return ExitError
	}
	fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	return ExitError
}

// lookup finds the command for args. Arguments that do not start with a
// known command name go to the default command.
func (a *App) lookup(args []string) (*Command, []string) {
	if len(args) > 0 {
		if cmd, ok := a.commands[args[0]]; ok {
			return cmd, args[1:]
		}
		if len(args[0]) > 0 && args[0][0] != '-' {
			return nil, nil
		}
	}
	if cmd, ok := a.commands[a.defaultCommand]; ok {
		return cmd, args
	}
	return nil, nil
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: gradle-usage [options] [command] [flags]\n\n")
	fmt.Fprintf(w, "Commands:\n")

	// Sort command names for deterministic output
	for _, name := range slices.Sorted(maps.Keys(a.commands)) {
		cmd := a.commands[name]
		summary := cmd.Summary
		if name == a.defaultCommand {
			summary += " (default)"
		}
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, summary)
	}

	fmt.Fprintf(w, "\nUse \"gradle-usage <command> --help\" for command details.\n\n")
	fmt.Fprintf(w, "Options:\n%s", a.GlobalUsage)
}
