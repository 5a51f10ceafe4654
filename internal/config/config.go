package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gradleusage/internal/logging"
)

const (
	appName        = "gradle-usage"
	configFileName = "config.yaml"
	logFileName    = "gradle-usage.log"

	defaultOutputDir    = "build/reports/usage"
	defaultProbeTimeout = 2 * time.Minute
)

type Config struct {
	Paths             []string `yaml:"paths"`
	Excludes          []string `yaml:"excludes"`
	FollowLinks       bool     `yaml:"follow_links"`
	UseWrapperVersion bool     `yaml:"use_wrapper_version"`
	OutputDir         string   `yaml:"output_dir"`
	Workers           int      `yaml:"workers"`
	ProbeTimeout      string   `yaml:"probe_timeout"`
	GradleCommand     string   `yaml:"gradle_command"`
	LogLevel          string   `yaml:"log_level"`
	LogFile           string   `yaml:"log_file"`
	Theme             string   `yaml:"theme"`
}

// LookPathFunc is the function signature for looking up executables.
type LookPathFunc func(name string) (string, error)

func DefaultConfig() Config {
	return Config{
		OutputDir:    defaultOutputDir,
		ProbeTimeout: defaultProbeTimeout.String(),
		LogLevel:     "info",
		Theme:        "mocha",
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFromDir loads config.yaml from dir.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, configFileName))
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	// Keys present but left empty fall back to defaults.
	defaults := DefaultConfig()
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}
	if cfg.ProbeTimeout == "" {
		cfg.ProbeTimeout = defaults.ProbeTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Theme == "" {
		cfg.Theme = defaults.Theme
	}

	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.ProbeTimeout != "" {
		d, err := time.ParseDuration(c.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("invalid probe_timeout %q: %w", c.ProbeTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
		}
	}
	if c.LogLevel != "" && !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (must be debug, info, warn or error)", c.LogLevel)
	}
	return nil
}

// ProbeTimeoutDuration returns the per-project probe timeout, falling back to
// the default when the setting is empty or invalid.
func (c *Config) ProbeTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil || d <= 0 {
		return defaultProbeTimeout
	}
	return d
}

// ResolvePaths returns the scan roots with ~ expanded. With no paths
// configured the current directory is scanned.
func (c *Config) ResolvePaths() []string {
	if len(c.Paths) == 0 {
		return []string{"."}
	}
	return expandAll(c.Paths)
}

// ResolveExcludes returns the excluded directories with ~ expanded.
func (c *Config) ResolveExcludes() []string {
	return expandAll(c.Excludes)
}

// ResolveOutputDir returns the report directory with ~ expanded.
func (c *Config) ResolveOutputDir() string {
	if c.OutputDir == "" {
		return defaultOutputDir
	}
	return ExpandHome(c.OutputDir)
}

// ResolveLogFile returns the log file path; an empty setting places the log
// next to the config file in dataDir.
func (c *Config) ResolveLogFile(dataDir string) string {
	if c.LogFile == "" {
		return filepath.Join(dataDir, logFileName)
	}
	return ExpandHome(c.LogFile)
}

// DetectedGradleCommand returns the configured fallback command or a gradle
// found on PATH.
func (c *Config) DetectedGradleCommand() string {
	return c.DetectedGradleCommandWith(exec.LookPath)
}

// DetectedGradleCommandWith returns the configured fallback command or
// auto-detects one using the provided lookup function. It returns "" when
// no gradle is available.
func (c *Config) DetectedGradleCommandWith(lookPath LookPathFunc) string {
	if c.GradleCommand != "" {
		return ExpandHome(c.GradleCommand)
	}
	if path, err := lookPath("gradle"); err == nil {
		return path
	}
	return ""
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func expandAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, ExpandHome(p))
	}
	return out
}

// DataDir returns the directory holding config.yaml and the log file.
// If configDir is specified, uses that; otherwise the XDG config location.
func DataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return filepath.Dir(getConfigPath())
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName, configFileName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName, configFileName)
	}

	return filepath.Join(home, ".config", appName, configFileName)
}
