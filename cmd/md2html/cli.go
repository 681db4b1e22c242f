package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// command runs one subcommand with the arguments after its name.
type command func(ctx context.Context, args []string, env *Environment) error

// commands lists the subcommands that take flags.
var commands = map[string]command{
	"add":        ignoreCtx(runAdd),
	"edit":       ignoreCtx(runEdit),
	"remove":     ignoreCtx(runRemove),
	"list":       ignoreCtx(runList),
	"css":        ignoreCtx(runCSS),
	"title":      ignoreCtx(runTitle),
	"open-after": ignoreCtx(runOpenAfter),
	"run":        runRun,
	"convert":    runConvert,
}

func ignoreCtx(fn func([]string, *Environment) error) command {
	return func(_ context.Context, args []string, env *Environment) error {
		return fn(args, env)
	}
}

// runMain dispatches args[1] and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	name, rest := args[1], args[2:]
	switch name {
	case "help", "-h", "--help":
		return runHelp(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "md2html %s\n", Version)
		return ExitSuccess
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(env.Stderr, "unknown command %q\n\n", name)
		printUsage(env.Stderr)
		return ExitUsage
	}

	err := cmd(ctx, rest, env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	}
	return exitCodeFor(err)
}

// usageError marks a flag parse error. --help is passed through so the
// dispatcher can exit cleanly after the usage was printed.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
