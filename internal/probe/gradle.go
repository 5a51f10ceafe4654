// pattern: Imperative Shell

package probe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"gradleusage/internal/logging"
	"gradleusage/internal/process"
)

// ErrNoLauncher is returned when a project has neither a wrapper script nor a
// configured fallback command.
var ErrNoLauncher = errors.New("no gradle wrapper script and no gradle command configured")

// gradleBanner matches the "Gradle 8.5" line printed by --version.
var gradleBanner = regexp.MustCompile(`^Gradle\s+(\S+)\s*$`)

// GradleProbe asks Gradle itself for its version by running the project's
// wrapper script with --version. Every call starts and reaps its own process.
type GradleProbe struct {
	// Command is used for projects without a wrapper script; empty disables the fallback.
	Command string
	// Env is appended to the environment of each Gradle process.
	Env    []string
	logger *logging.ScopedLogger
}

// NewGradleProbe creates a probe. A nil logger discards process output.
func NewGradleProbe(command string, logger *logging.ScopedLogger) *GradleProbe {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &GradleProbe{Command: command, logger: logger}
}

// Version implements Probe.
func (p *GradleProbe) Version(ctx context.Context, projectRoot string) (string, error) {
	binary, args, err := p.launcher(projectRoot)
	if err != nil {
		return "", err
	}

	res, err := process.Run(ctx, process.Config{
		Name:   "gradle",
		Binary: binary,
		Args:   args,
		Dir:    projectRoot,
		Env:    append([]string{"GRADLE_OPTS=" + gradleOpts(os.Getenv("GRADLE_OPTS"))}, p.Env...),
	}, p.logger.With("path", projectRoot))
	if err != nil {
		return "", err
	}

	return ParseVersionOutput(res.Stdout)
}

func (p *GradleProbe) launcher(projectRoot string) (string, []string, error) {
	script := filepath.Join(projectRoot, wrapperScript())
	if info, err := os.Stat(script); err == nil && !info.IsDir() {
		return script, []string{"--version"}, nil
	}
	if p.Command == "" {
		return "", nil, ErrNoLauncher
	}
	return p.Command, []string{"--project-dir", projectRoot, "--version"}, nil
}

// noDaemon keeps the probe from spawning or reusing a long-lived daemon.
const noDaemon = "-Dorg.gradle.daemon=false"

// gradleOpts adds noDaemon to the user's GRADLE_OPTS, keeping settings such as
// proxies that the wrapper needs to download its distribution.
func gradleOpts(current string) string {
	current = strings.TrimSpace(current)
	if current == "" {
		return noDaemon
	}
	return current + " " + noDaemon
}

func wrapperScript() string {
	if runtime.GOOS == "windows" {
		return "gradlew.bat"
	}
	return "gradlew"
}

// ParseVersionOutput extracts the version from `gradle --version` output.
// ANSI styling is stripped before matching.
func ParseVersionOutput(out []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(ansi.Strip(scanner.Text()))
		if m := gradleBanner.FindStringSubmatch(line); m != nil {
			return m[1], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read gradle output: %w", err)
	}
	return "", ErrNoVersion
}
