package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	configPath := writeConfig(t, `
paths:
  - /src/work
  - /src/oss
excludes:
  - /src/work/archive
follow_links: true
use_wrapper_version: true
output_dir: /tmp/reports
workers: 4
probe_timeout: 30s
gradle_command: /opt/gradle/bin/gradle
log_level: debug
log_file: /tmp/gradle-usage.log
theme: latte
`)

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if !slices.Equal(cfg.Paths, []string{"/src/work", "/src/oss"}) {
		t.Errorf("Paths: got %v", cfg.Paths)
	}
	if !slices.Equal(cfg.Excludes, []string{"/src/work/archive"}) {
		t.Errorf("Excludes: got %v", cfg.Excludes)
	}
	if !cfg.FollowLinks {
		t.Error("FollowLinks: got false, want true")
	}
	if !cfg.UseWrapperVersion {
		t.Error("UseWrapperVersion: got false, want true")
	}
	if cfg.OutputDir != "/tmp/reports" {
		t.Errorf("OutputDir: got %q, want %q", cfg.OutputDir, "/tmp/reports")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers: got %d, want 4", cfg.Workers)
	}
	if cfg.ProbeTimeoutDuration() != 30*time.Second {
		t.Errorf("ProbeTimeoutDuration: got %v, want 30s", cfg.ProbeTimeoutDuration())
	}
	if cfg.GradleCommand != "/opt/gradle/bin/gradle" {
		t.Errorf("GradleCommand: got %q", cfg.GradleCommand)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogFile != "/tmp/gradle-usage.log" {
		t.Errorf("LogFile: got %q", cfg.LogFile)
	}
	if cfg.Theme != "latte" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "latte")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.OutputDir != "build/reports/usage" {
		t.Errorf("OutputDir: got %q, want %q", cfg.OutputDir, "build/reports/usage")
	}
	if cfg.ProbeTimeoutDuration() != 2*time.Minute {
		t.Errorf("ProbeTimeoutDuration: got %v, want 2m", cfg.ProbeTimeoutDuration())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Theme != "mocha" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "mocha")
	}
	if cfg.FollowLinks || cfg.UseWrapperVersion {
		t.Error("link following and wrapper version should default to off")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.OutputDir != DefaultConfig().OutputDir {
		t.Errorf("OutputDir: got %q, want default", cfg.OutputDir)
	}
}

func TestLoadFrom_EmptyValuesUseDefaults(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, "output_dir: \"\"\nlog_level: \"\"\ntheme: \"\"\nprobe_timeout: \"\"\n"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	want := DefaultConfig()
	if cfg.OutputDir != want.OutputDir || cfg.LogLevel != want.LogLevel || cfg.Theme != want.Theme || cfg.ProbeTimeout != want.ProbeTimeout {
		t.Errorf("LoadFrom() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, "paths: [unterminated\n"))
	if err == nil {
		t.Fatal("LoadFrom() error = nil, want parse error")
	}
	if cfg.Theme != "mocha" {
		t.Errorf("Theme after parse error: got %q, want default", cfg.Theme)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("workers: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers: got %d, want 3", cfg.Workers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"bad timeout", func(c *Config) { c.ProbeTimeout = "soon" }, true},
		{"zero timeout", func(c *Config) { c.ProbeTimeout = "0s" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, true},
		{"warn level", func(c *Config) { c.LogLevel = "warn" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProbeTimeoutDuration_InvalidFallsBack(t *testing.T) {
	cfg := Config{ProbeTimeout: "forever"}
	if got := cfg.ProbeTimeoutDuration(); got != 2*time.Minute {
		t.Errorf("ProbeTimeoutDuration: got %v, want 2m", got)
	}
}

func TestResolvePaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	empty := Config{}
	if got := empty.ResolvePaths(); !slices.Equal(got, []string{"."}) {
		t.Errorf("ResolvePaths() with no paths = %v, want [.]", got)
	}

	cfg := Config{
		Paths:    []string{"~/src", "/abs/path"},
		Excludes: []string{"~/src/archive"},
	}
	if got, want := cfg.ResolvePaths(), []string{filepath.Join(home, "src"), "/abs/path"}; !slices.Equal(got, want) {
		t.Errorf("ResolvePaths() = %v, want %v", got, want)
	}
	if got, want := cfg.ResolveExcludes(), []string{filepath.Join(home, "src", "archive")}; !slices.Equal(got, want) {
		t.Errorf("ResolveExcludes() = %v, want %v", got, want)
	}
}

func TestResolveOutputDir(t *testing.T) {
	cfg := Config{}
	if got := cfg.ResolveOutputDir(); got != "build/reports/usage" {
		t.Errorf("ResolveOutputDir() = %q, want default", got)
	}
	cfg.OutputDir = "/var/reports"
	if got := cfg.ResolveOutputDir(); got != "/var/reports" {
		t.Errorf("ResolveOutputDir() = %q, want %q", got, "/var/reports")
	}
}

func TestResolveLogFile(t *testing.T) {
	cfg := Config{}
	if got, want := cfg.ResolveLogFile("/data"), filepath.Join("/data", "gradle-usage.log"); got != want {
		t.Errorf("ResolveLogFile() = %q, want %q", got, want)
	}
	cfg.LogFile = "/tmp/custom.log"
	if got := cfg.ResolveLogFile("/data"); got != "/tmp/custom.log" {
		t.Errorf("ResolveLogFile() = %q, want %q", got, "/tmp/custom.log")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		in, want string
	}{
		{"~", home},
		{"~/src", filepath.Join(home, "src")},
		{"/abs", "/abs"},
		{"relative/dir", "relative/dir"},
		{"~user/src", "~user/src"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectedGradleCommand_ConfiguredValue(t *testing.T) {
	cfg := Config{GradleCommand: "/opt/gradle/bin/gradle"}
	got := cfg.DetectedGradleCommandWith(func(name string) (string, error) {
		t.Error("lookPath should not be called when a command is configured")
		return "", os.ErrNotExist
	})
	if got != "/opt/gradle/bin/gradle" {
		t.Errorf("DetectedGradleCommand: got %q", got)
	}
}

func TestDetectedGradleCommand_AutoDetect(t *testing.T) {
	cfg := Config{}
	got := cfg.DetectedGradleCommandWith(func(name string) (string, error) {
		if name == "gradle" {
			return "/usr/bin/gradle", nil
		}
		return "", os.ErrNotExist
	})
	if got != "/usr/bin/gradle" {
		t.Errorf("DetectedGradleCommand: got %q, want %q", got, "/usr/bin/gradle")
	}
}

func TestDetectedGradleCommand_NotFound(t *testing.T) {
	cfg := Config{}
	got := cfg.DetectedGradleCommandWith(func(name string) (string, error) {
		return "", os.ErrNotExist
	})
	if got != "" {
		t.Errorf("DetectedGradleCommand: got %q, want empty", got)
	}
}

func TestDataDir(t *testing.T) {
	if got := DataDir("/custom"); got != "/custom" {
		t.Errorf("DataDir(/custom) = %q", got)
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if got, want := DataDir(""), filepath.Join(xdg, "gradle-usage"); got != want {
		t.Errorf("DataDir() = %q, want %q", got, want)
	}
}
