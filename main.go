package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
)

// Exit codes
const (
	exitOK       = 0
	exitFailures = 1
	exitError    = 2
)

type cli struct {
	Mode    string   `arg:"" optional:"" help:"Pass \"apply\" to rewrite the golden files from the current compiler output."`
	Rest    []string `arg:"" optional:"" hidden:"" help:"Ignored."`
	Config  string   `short:"c" type:"existingfile" help:"YAML file with the suites to run instead of the built-in table."`
	Suite   []string `short:"s" help:"Run only the named suite (repeatable)."`
	Verbose bool     `short:"v" help:"Log compiler invocations to stderr."`
}

func main() {
	var c cli
	kong.Parse(&c,
		kong.Name("harness"),
		kong.Description("Golden-master regression harness for the compiler."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := c.run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the harness and returns the process exit code.
func (c *cli) run(ctx context.Context, stdout, stderr io.Writer) int {
	log := newLogger(stderr, c.Verbose)

	suites := defaultSuites()
	if c.Config != "" {
		var err error
		if suites, err = loadConfig(c.Config); err != nil {
			fmt.Fprintln(stderr, "harness:", err)
			return exitError
		}
	}

	suites, err := selectSuites(suites, c.Suite)
	if err != nil {
		fmt.Fprintln(stderr, "harness:", err)
		return exitError
	}

	cfg := runConfig{suites: suites, mode: parseMode(c.Mode)}
	failed, err := run(ctx, cfg, stdout, log)
	if err != nil {
		fmt.Fprintln(stderr, "harness:", err)
		return exitError
	}
	if failed > 0 {
		return exitFailures
	}
	return exitOK
}
