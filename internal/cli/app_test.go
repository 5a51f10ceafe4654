// pattern: Functional Core
package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestApp() (*App, *bytes.Buffer, *bytes.Buffer) {
	app := NewApp("1.0.0")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app.Stdout = stdout
	app.Stderr = stderr
	return app, stdout, stderr
}

func TestApp_PrintHelp_ListsCommandsSorted(t *testing.T) {
	app, _, _ := newTestApp()
	app.AddCommand(&Command{Name: "watch", Summary: "Watch things"})
	app.AddCommand(&Command{Name: "scan", Summary: "Scan things"})
	app.SetDefault("scan")
	app.GlobalUsage = "  -c, --config-dir string\n"

	buf := &bytes.Buffer{}
	app.PrintHelp(buf)
	output := buf.String()

	scanIdx := strings.Index(output, "scan")
	watchIdx := strings.Index(output, "watch")
	if scanIdx < 0 || watchIdx < 0 {
		t.Fatalf("help missing commands:\n%s", output)
	}
	if scanIdx > watchIdx {
		t.Errorf("commands not sorted:\n%s", output)
	}
	if !strings.Contains(output, "Scan things (default)") {
		t.Errorf("help does not mark the default command:\n%s", output)
	}
	if !strings.Contains(output, "--config-dir") {
		t.Errorf("help missing global options:\n%s", output)
	}
}

func TestApp_Execute_Help(t *testing.T) {
	for _, arg := range []string{"help", "--help", "-h"} {
		t.Run(arg, func(t *testing.T) {
			app, stdout, _ := newTestApp()
			app.AddCommand(&Command{Name: "scan", Summary: "Scan"})

			if code := app.Execute(context.Background(), []string{arg}); code != ExitOK {
				t.Errorf("Execute(%q) = %d, want %d", arg, code, ExitOK)
			}
			if !strings.Contains(stdout.String(), "Usage: gradle-usage") {
				t.Errorf("help not printed to stdout: %q", stdout.String())
			}
		})
	}
}

func TestApp_Execute_DispatchesNamedCommand(t *testing.T) {
	app, _, _ := newTestApp()
	var passedArgs []string
	app.AddCommand(&Command{
		Name: "version",
		Run: func(_ context.Context, args []string) error {
			passedArgs = args
			return nil
		},
	})

	if code := app.Execute(context.Background(), []string{"version", "extra"}); code != ExitOK {
		t.Fatalf("Execute() = %d, want %d", code, ExitOK)
	}
	if len(passedArgs) != 1 || passedArgs[0] != "extra" {
		t.Errorf("args = %v, want [extra]", passedArgs)
	}
}

func TestApp_Execute_DefaultCommandGetsFlags(t *testing.T) {
	app, _, _ := newTestApp()
	var passedArgs []string
	called := false
	app.AddCommand(&Command{
		Name: "scan",
		Run: func(_ context.Context, args []string) error {
			called = true
			passedArgs = args
			return nil
		},
	})
	app.SetDefault("scan")

	if code := app.Execute(context.Background(), []string{"--dir", "/src"}); code != ExitOK {
		t.Fatalf("Execute() = %d, want %d", code, ExitOK)
	}
	if !called {
		t.Fatal("default command was not run")
	}
	if strings.Join(passedArgs, " ") != "--dir /src" {
		t.Errorf("args = %v, want [--dir /src]", passedArgs)
	}

	called = false
	if code := app.Execute(context.Background(), nil); code != ExitOK || !called {
		t.Errorf("Execute(nil) = %d, called = %v; want default command to run", code, called)
	}
}

func TestApp_Execute_UnknownCommand(t *testing.T) {
	app, _, stderr := newTestApp()
	app.AddCommand(&Command{Name: "scan"})
	app.SetDefault("scan")

	if code := app.Execute(context.Background(), []string{"bogus"}); code != ExitUsage {
		t.Errorf("Execute() = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), `unknown command "bogus"`) {
		t.Errorf("stderr = %q, want unknown command message", stderr.String())
	}
}

func TestApp_Execute_NoDefault_PrintsHelp(t *testing.T) {
	app, _, stderr := newTestApp()
	app.AddCommand(&Command{Name: "scan"})

	if code := app.Execute(context.Background(), nil); code != ExitUsage {
		t.Errorf("Execute(nil) = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "Commands:") {
		t.Errorf("help not printed to stderr: %q", stderr.String())
	}
}

func TestApp_Execute_ErrorExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"usage error", &UsageError{Err: errors.New("bad flag")}, ExitUsage, "Error: bad flag\nUsage: gradle-usage fail"},
		{"runtime error", errors.New("boom"), ExitError, "Error: boom"},
		{"canceled", context.Canceled, ExitError, "Interrupted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, stderr := newTestApp()
			app.AddCommand(&Command{
				Name:  "fail",
				Usage: "Usage: gradle-usage fail",
				Run: func(context.Context, []string) error {
					return tt.err
				},
			})

			if code := app.Execute(context.Background(), []string{"fail"}); code != tt.wantCode {
				t.Errorf("Execute() = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantErr)
			}
		})
	}
}
