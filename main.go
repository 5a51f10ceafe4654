// pattern: Imperative Shell
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"gradleusage/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("gradle-usage", flag.ContinueOnError)
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	fs.SetInterspersed(false)

	configDir := fs.StringP("config-dir", "c", "", "config directory (default: ~/.config/gradle-usage)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error (default: config log_level)")

	globals := cli.Globals{}
	app := cli.BuildApp(version, globals)
	app.GlobalUsage = fs.FlagUsages()

	fs.SetOutput(app.Stderr)
	fs.Usage = func() { app.PrintHelp(app.Stderr) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitUsage
	}

	globals.ConfigDir = *configDir
	globals.LogLevel = *logLevel
	app = cli.BuildApp(version, globals)
	app.GlobalUsage = fs.FlagUsages()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Execute(ctx, fs.Args())
}
