package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/tinyrange/imgdoc"
)

const (
	exitOK        = 0
	exitNoCommand = 1
	exitRuntime   = 2
	exitBadArgs   = 10
)

// command is one imgdoc subcommand. flags registers its options on fs and
// returns the function that runs it once fs has been parsed.
type command struct {
	summary string
	flags   func(fs *flag.FlagSet) func(env *cliEnv) error
}

var commands = map[string]command{
	"synth": {summary: "create a document filled with synthetic tiles", flags: synthFlags},
	"query": {summary: "list tiles matching a query", flags: queryFlags},
	"info":  {summary: "describe a document", flags: infoFlags},
}

// cliEnv is what every command gets to work with.
type cliEnv struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	cfg    Config
	// set holds the names of flags given on the command line.
	set map[string]bool
}

// argError marks an error in the command line rather than at runtime.
type argError struct{ err error }

func (e argError) Error() string { return e.err.Error() }
func (e argError) Unwrap() error { return e.err }

func badArgs(format string, args ...any) error {
	return argError{fmt.Errorf(format, args...)}
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Usage: imgdoc <command> [flags]\n\nCommands:\n")
	for _, name := range names {
		fmt.Fprintf(w, "  %-6s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  imgdoc synth -o out.db -bounds C0,2T0,4 -columns 8 -rows 8\n")
	fmt.Fprintf(w, "  imgdoc query -i out.db -dims C1,1 -level 0 -rect 0,0,512,512\n")
	fmt.Fprintf(w, "  imgdoc info -i out.db -format yaml\n")
	fmt.Fprintf(w, "\nRun 'imgdoc <command> -h' for the flags of a command.\n")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitNoCommand
	}
	name := args[0]
	if name == "-h" || name == "-help" || name == "--help" || name == "help" {
		usage(stdout)
		return exitOK
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "imgdoc: unknown command %q\n\n", name)
		usage(stderr)
		return exitNoCommand
	}

	fs := flag.NewFlagSet("imgdoc "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("debug", false, "enable debug logging")
	configPath := fs.String("config", "", "YAML config file")
	library := fs.String("library", "", "path of the imgdoc2 engine library")
	exec := cmd.flags(fs)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitBadArgs
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "imgdoc: unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return exitBadArgs
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	env := &cliEnv{
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		set:    map[string]bool{},
	}
	fs.Visit(func(f *flag.Flag) { env.set[f.Name] = true })

	if *configPath != "" {
		cfg, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "imgdoc: %v\n", err)
			return exitBadArgs
		}
		env.cfg = cfg
	}
	if *library != "" {
		env.cfg.Library.Path = *library
	}
	if err := env.cfg.apply(); err != nil {
		fmt.Fprintf(stderr, "imgdoc: %v\n", err)
		return exitRuntime
	}

	if err := exec(env); err != nil {
		fmt.Fprintf(stderr, "imgdoc %s: %v\n", name, err)
		var ae argError
		if errors.As(err, &ae) {
			return exitBadArgs
		}
		return exitRuntime
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// newEnvironment creates an engine environment that logs through the CLI's
// logger.
func (e *cliEnv) newEnvironment() (*imgdoc.Environment, error) {
	return imgdoc.NewEnvironment(e.logger.With("source", "engine"))
}
