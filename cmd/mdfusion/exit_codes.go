package main

import (
	"context"
	"errors"
	"os/exec"

	"github.com/alnah/go-mdfusion"
	"github.com/alnah/go-mdfusion/internal/config"
	"github.com/alnah/go-mdfusion/internal/hints"
)

// Exit codes for the mdfusion CLI.
// 0=success, 1=general, 2=usage, 3=input, 4=browser. A pandoc failure exits
// with pandoc's own status, a missing program with 127 like a shell would.
const (
	ExitSuccess      = 0
	ExitGeneral      = 1
	ExitUsage        = 2
	ExitIO           = 3
	ExitBrowser      = 4
	ExitToolNotFound = 127
)

// exitCodeFor returns the exit code for an error returned by runFuse.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var toolErr *mdfusion.ToolError
	if errors.As(err, &toolErr) && toolErr.ExitCode > 0 {
		return toolErr.ExitCode
	}

	if errors.Is(err, mdfusion.ErrToolNotFound) {
		return ExitToolNotFound
	}

	if errors.Is(err, mdfusion.ErrBrowserConnect) ||
		errors.Is(err, mdfusion.ErrPageLoad) ||
		errors.Is(err, mdfusion.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, mdfusion.ErrNotFound) ||
		errors.Is(err, mdfusion.ErrRead) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, mdfusion.ErrInvalidOutput) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "". chromiumPath is the
// configured browser, used for connection failures.
func hintFor(err error, chromiumPath string) string {
	var toolErr *mdfusion.ToolError
	var execErr *exec.Error
	switch {
	case errors.As(err, &toolErr):
		return hints.ForUnknownOption(toolErr.UnknownOption, toolErr.Tool)
	case errors.Is(err, mdfusion.ErrToolNotFound) && errors.As(err, &execErr):
		return hints.ForToolNotFound(execErr.Name)
	case errors.Is(err, mdfusion.ErrPageLoad) && errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mdfusion.ErrBrowserConnect):
		return hints.ForBrowserConnect(chromiumPath)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, mdfusion.ErrInvalidOutput):
		return hints.ForPresentationOutput()
	case errors.Is(err, mdfusion.ErrNoMarkdown):
		return hints.ForNoMarkdown()
	}
	return ""
}
