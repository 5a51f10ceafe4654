// pattern: Functional Core
package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"gradleusage/internal/config"
	"gradleusage/internal/watch"
)

// errHelp is returned by parse when --help was requested and usage has been
// printed.
var errHelp = errors.New("help requested")

// scanFlags holds the flags shared by scan and watch. Only flags the user
// set override the config file.
type scanFlags struct {
	fs    *flag.FlagSet
	usage string

	dirs          []string
	excludes      []string
	followLinks   bool
	useWrapper    bool
	outputDir     string
	workers       int
	timeout       time.Duration
	gradleCommand string
	progress      bool
	quiet         bool
	debounce      time.Duration
}

func newScanFlags(name, usage string, watchMode bool) *scanFlags {
	f := &scanFlags{
		fs:    flag.NewFlagSet(name, flag.ContinueOnError),
		usage: usage,
	}
	f.fs.SetOutput(io.Discard)
	f.fs.StringArrayVar(&f.dirs, "dir", nil, "directory to scan (repeatable; default: config paths or .)")
	f.fs.StringArrayVar(&f.excludes, "exclude-dir", nil, "directory to skip with its subtree (repeatable)")
	f.fs.BoolVar(&f.followLinks, "follow-links", false, "descend into symlinked directories")
	f.fs.BoolVar(&f.useWrapper, "use-wrapper-version", false, "read the version from gradle-wrapper.properties instead of running gradle")
	f.fs.StringVar(&f.outputDir, "output-dir", "", "directory for usage.txt (default: build/reports/usage)")
	f.fs.IntVar(&f.workers, "workers", 0, "concurrent version probes (default: number of CPUs)")
	f.fs.DurationVar(&f.timeout, "timeout", 0, "timeout for a single version probe (default: 2m)")
	f.fs.StringVar(&f.gradleCommand, "gradle-command", "", "gradle executable for projects without a wrapper script")
	f.fs.BoolVarP(&f.quiet, "quiet", "q", false, "do not print the report")
	if watchMode {
		f.fs.DurationVar(&f.debounce, "debounce", watch.DefaultDebounce, "quiet period before re-scanning after a change")
	} else {
		f.fs.BoolVar(&f.progress, "progress", false, "show a progress display while scanning (terminal only)")
	}
	return f
}

// parse parses args. It prints usage to w and returns errHelp for --help, and
// wraps every other problem in a *UsageError.
func (f *scanFlags) parse(args []string, w io.Writer) error {
	if err := f.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(w, "%s\n\nFlags:\n%s", f.usage, f.fs.FlagUsages())
			return errHelp
		}
		return &UsageError{Err: err}
	}
	if f.fs.NArg() > 0 {
		return &UsageError{Err: fmt.Errorf("unexpected argument %q (use --dir to add scan roots)", f.fs.Arg(0))}
	}
	return nil
}

// apply overrides cfg with every flag that was set on the command line.
func (f *scanFlags) apply(cfg *config.Config) {
	if f.fs.Changed("dir") {
		cfg.Paths = f.dirs
	}
	if f.fs.Changed("exclude-dir") {
		cfg.Excludes = f.excludes
	}
	if f.fs.Changed("follow-links") {
		cfg.FollowLinks = f.followLinks
	}
	if f.fs.Changed("use-wrapper-version") {
		cfg.UseWrapperVersion = f.useWrapper
	}
	if f.fs.Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if f.fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if f.fs.Changed("timeout") {
		cfg.ProbeTimeout = f.timeout.String()
	}
	if f.fs.Changed("gradle-command") {
		cfg.GradleCommand = f.gradleCommand
	}
}
