package mdfusion

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	// ErrNotFound reports a missing root directory or referenced file.
	ErrNotFound = errors.New("not found")
	// ErrRead reports a source that exists but cannot be read or decoded.
	ErrRead = errors.New("read error")
	// ErrExternalTool reports a failing external program (pandoc, chromium).
	ErrExternalTool = errors.New("external tool failed")
	// ErrToolNotFound reports an external program missing from PATH.
	// Errors carrying it also match ErrExternalTool.
	ErrToolNotFound = errors.New("executable not found on PATH")
	// ErrInvalidOutput reports an output path unsuitable for the mode.
	ErrInvalidOutput = errors.New("invalid output path")
	// ErrNoMarkdown reports a root directory without Markdown files.
	// Errors carrying it also match ErrNotFound.
	ErrNoMarkdown = errors.New("no Markdown files")

	// Browser errors. Errors carrying them also match ErrExternalTool.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// toolNotFound builds the error returned when name is not on PATH. The cause
// (usually an *exec.Error) stays in the chain.
func toolNotFound(name string, cause error) error {
	return fmt.Errorf("%w: %w: %s: %w", ErrExternalTool, ErrToolNotFound, name, cause)
}

// browserError tags a browser failure with both its kind and ErrExternalTool.
// The cause stays in the chain so timeouts match context.DeadlineExceeded.
func browserError(kind error, cause error) error {
	return fmt.Errorf("%w: %w: %w", ErrExternalTool, kind, cause)
}

// ToolError describes an external program that ran and exited non-zero.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string

	// UnknownOption is the argument the tool rejected, when its stderr says so.
	UnknownOption string

	Err error
}

// Error returns the tool name, exit status and the last line of its stderr.
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if e.UnknownOption != "" {
		return fmt.Sprintf("%s: argument '%s' not recognized", msg, e.UnknownOption)
	}
	if line := lastLine(e.Stderr); line != "" {
		return msg + ": " + line
	}
	return msg
}

// Unwrap exposes ErrExternalTool and the underlying exec error.
func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExternalTool}
	}
	return []error{ErrExternalTool, e.Err}
}

// CommandLine returns the invocation as a single shell-like string.
func (e *ToolError) CommandLine() string {
	return strings.Join(append([]string{e.Tool}, e.Args...), " ")
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
