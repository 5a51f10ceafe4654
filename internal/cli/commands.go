// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"gradleusage/internal/config"
	"gradleusage/internal/discovery"
	"gradleusage/internal/logging"
	"gradleusage/internal/probe"
	"gradleusage/internal/report"
	"gradleusage/internal/tui"
	"gradleusage/internal/usage"
	"gradleusage/internal/watch"
)

// Globals holds the options given before the command name.
type Globals struct {
	ConfigDir string
	LogLevel  string
}

const (
	scanUsage = "Usage: gradle-usage scan [--dir DIR]... [--exclude-dir DIR]... [flags]\n\n" +
		"Find Gradle projects, resolve their versions and write usage.txt."
	watchUsage = "Usage: gradle-usage watch [--dir DIR]... [--exclude-dir DIR]... [flags]\n\n" +
		"Scan, then scan again whenever a Gradle settings or wrapper file changes."
)

// BuildApp creates and configures the CLI application with all commands.
func BuildApp(version string, globals Globals) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "scan",
		Summary: "Scan directories and write the usage report",
		Usage:   scanUsage,
		Run: func(ctx context.Context, args []string) error {
			f := newScanFlags("scan", scanUsage, false)
			if err := f.parse(args, app.Stdout); err != nil {
				return ignoreHelp(err)
			}
			return runScanCommand(ctx, app, globals, f)
		},
	})
	app.SetDefault("scan")

	app.AddCommand(&Command{
		Name:    "watch",
		Summary: "Re-scan whenever Gradle marker files change",
		Usage:   watchUsage,
		Run: func(ctx context.Context, args []string) error {
			f := newScanFlags("watch", watchUsage, true)
			if err := f.parse(args, app.Stdout); err != nil {
				return ignoreHelp(err)
			}
			return runWatchCommand(ctx, app, globals, f)
		},
	})

	app.AddCommand(&Command{
		Name:    "markers",
		Summary: "List the files that mark a Gradle project root",
		Usage:   "Usage: gradle-usage markers",
		Run: func(_ context.Context, args []string) error {
			for _, m := range discovery.Markers() {
				fmt.Fprintln(app.Stdout, m)
			}
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: gradle-usage version",
		Run: func(_ context.Context, args []string) error {
			fmt.Fprintln(app.Stdout, version)
			return nil
		},
	})

	return app
}

func ignoreHelp(err error) error {
	if errors.Is(err, errHelp) {
		return nil
	}
	return err
}

func runScanCommand(ctx context.Context, app *App, globals Globals, f *scanFlags) error {
	progress := f.progress && isTerminal(app.Stdout)

	// The progress view owns the terminal; warnings are shown inside it.
	console := app.Stderr
	if progress {
		console = nil
	}

	s, err := openSession(globals, f, app.Stdout, app.Stderr, console)
	if err != nil {
		return err
	}
	defer s.close()

	var projects []usage.Project
	if progress {
		projects, err = s.runWithProgress(ctx)
	} else {
		projects, err = s.pipeline.Run(ctx, s.options())
	}
	if err != nil {
		s.logger.Error("scan failed", "error", err)
		return err
	}
	return s.publish(projects)
}

func runWatchCommand(ctx context.Context, app *App, globals Globals, f *scanFlags) error {
	s, err := openSession(globals, f, app.Stdout, app.Stderr, app.Stderr)
	if err != nil {
		return err
	}
	defer s.close()

	w := watch.New(s.logs.For("watch"), f.debounce)
	err = w.Run(ctx, func(ctx context.Context) ([]string, error) {
		projects, err := s.pipeline.Run(ctx, s.options())
		if err != nil {
			return nil, err
		}
		if err := s.publish(projects); err != nil {
			return nil, err
		}
		dirs := s.cfg.ResolvePaths()
		for _, p := range projects {
			dirs = append(dirs, p.Path)
		}
		return dirs, nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// session is one configured pipeline plus the logging it writes to.
type session struct {
	cfg      config.Config
	dataDir  string
	quiet    bool
	logs     *logging.Manager
	logger   *logging.ScopedLogger
	scanner  *discovery.Scanner
	pipeline *usage.Pipeline
	stdout   io.Writer
	stderr   io.Writer
}

// openSession loads the config, applies the flags and builds the pipeline.
// Diagnostics at warn and above are echoed to console unless it is nil.
func openSession(globals Globals, f *scanFlags, stdout, stderr, console io.Writer) (*session, error) {
	cfg, err := loadConfig(globals.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	f.apply(&cfg)
	if globals.LogLevel != "" {
		cfg.LogLevel = globals.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := config.DataDir(globals.ConfigDir)
	logs, err := logging.NewManager(logging.Config{
		FilePath:       cfg.ResolveLogFile(dataDir),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
		Console:        console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	probeLogger := logs.For("probe")
	var p probe.Probe
	if cfg.UseWrapperVersion {
		p = probe.WrapperProbe{}
	} else {
		p = probe.NewGradleProbe(cfg.DetectedGradleCommand(), probeLogger)
	}

	scanner := discovery.NewScanner(logs.For("scan"))
	resolver := probe.NewResolver(p, cfg.ProbeTimeoutDuration(), probeLogger)
	logger := logs.For("app")

	return &session{
		cfg:      cfg,
		dataDir:  dataDir,
		quiet:    f.quiet,
		logs:     logs,
		logger:   logger,
		scanner:  scanner,
		pipeline: usage.NewPipeline(scanner, resolver, logger),
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

func (s *session) close() {
	_ = s.logs.Close()
}

func (s *session) options() usage.Options {
	return usage.Options{
		Roots:       s.cfg.ResolvePaths(),
		Excludes:    s.cfg.ResolveExcludes(),
		FollowLinks: s.cfg.FollowLinks,
		Workers:     s.cfg.Workers,
	}
}

// publish writes the report file and, unless quiet, prints the report.
func (s *session) publish(projects []usage.Project) error {
	lines := report.Build(projects)
	path, err := report.Write(s.cfg.ResolveOutputDir(), s.dataDir, lines)
	if err != nil {
		s.logger.Error("failed to write report", "error", err)
		return err
	}
	s.logger.Info("report written", "path", path, "projects", len(projects))

	if s.quiet {
		return nil
	}
	if isTerminal(s.stdout) {
		fmt.Fprintln(s.stdout, tui.RenderReport(lines, s.cfg.Theme))
	} else {
		fmt.Fprintln(s.stdout, strings.Join(lines, "\n"))
	}
	fmt.Fprintf(s.stderr, "Report written to %s\n", path)
	return nil
}

// runWithProgress runs the pipeline behind a bubbletea progress display.
// Pressing ctrl+c cancels the run.
func (s *session) runWithProgress(ctx context.Context) ([]usage.Project, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewProgressModel(s.cfg.Theme, s.logs.Entries())
	model.OnInterrupt = cancel
	p := tea.NewProgram(model, tea.WithOutput(s.stdout), tea.WithContext(ctx))

	s.scanner.OnFound = func(path string) { p.Send(tui.FoundMsg{Path: path}) }
	s.pipeline.OnResolved = func(project usage.Project) { p.Send(tui.ResolvedMsg{Project: project}) }

	var (
		projects []usage.Project
		runErr   error
		done     = make(chan struct{})
	)
	go func() {
		defer close(done)
		projects, runErr = s.pipeline.Run(ctx, s.options())
		p.Send(tui.DoneMsg{Err: runErr})
	}()

	_, teaErr := p.Run()
	if teaErr != nil && !errors.Is(teaErr, tea.ErrProgramKilled) {
		cancel()
		<-done
		return nil, fmt.Errorf("progress display: %w", teaErr)
	}
	<-done
	return projects, runErr
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
