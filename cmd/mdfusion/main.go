// Command mdfusion merges every Markdown file under a directory into one PDF,
// or into a reveal.js deck printed to PDF.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdfusion"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	os.Exit(runMain(os.Args[1:], DefaultEnv()))
}

// runMain dispatches subcommands and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) > 0 {
		switch args[0] {
		case "doctor":
			return runDoctorCmd(args[1:], env)
		case "version":
			fmt.Fprintf(env.Stdout, "mdfusion %s\n", Version)
			return ExitSuccess
		case "help":
			runHelp(args[1:], env)
			return ExitSuccess
		}
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runFuse(ctx, args, env); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, "error:", err)
		printToolDetails(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// printToolDetails writes the failing command and its full stderr when err
// comes from an external tool. The error line only carries the last line.
func printToolDetails(w io.Writer, err error) {
	var toolErr *mdfusion.ToolError
	if !errors.As(err, &toolErr) {
		return
	}
	fmt.Fprintln(w, "  command:", toolErr.CommandLine())
	stderr := strings.TrimSpace(toolErr.Stderr)
	if stderr == "" {
		return
	}
	fmt.Fprintf(w, "  %s output:\n", toolErr.Tool)
	for _, line := range strings.Split(stderr, "\n") {
		fmt.Fprintln(w, "    "+strings.TrimRight(line, "\r"))
	}
}
