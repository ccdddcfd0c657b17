package mdfusion

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// fakeRunner implements CommandRunner without spawning processes.
type fakeRunner struct {
	mu sync.Mutex

	// Missing lists executables LookPath reports as absent.
	Missing map[string]bool
	// Stdout and Stderr are written to the command's streams.
	Stdout string
	Stderr string
	// Err is returned by Run after OnRun (if any) succeeds.
	Err error
	// OnRun is called with the arguments; an error aborts the run.
	OnRun func(args []string) error

	Calls [][]string
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, append([]string{name}, args...))
	f.mu.Unlock()

	_, _ = io.WriteString(stdout, f.Stdout)
	_, _ = io.WriteString(stderr, f.Stderr)
	if f.OnRun != nil {
		if err := f.OnRun(args); err != nil {
			return err
		}
	}
	return f.Err
}

// lastCall returns the arguments of the most recent Run, program included.
func (f *fakeRunner) lastCall(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		t.Fatal("runner was not called")
	}
	return f.Calls[len(f.Calls)-1]
}

// exitError mimics *exec.ExitError.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *exitError) ExitCode() int { return e.code }

// fakePrinter implements DeckPrinter by writing a stub PDF.
type fakePrinter struct {
	Err     error
	Deck    string
	PDF     string
	Closed  bool
	content string
}

func (p *fakePrinter) PrintPDF(ctx context.Context, deckPath, pdfPath string) error {
	p.Deck, p.PDF = deckPath, pdfPath
	if p.Err != nil {
		return p.Err
	}
	data, err := os.ReadFile(deckPath)
	if err != nil {
		return err
	}
	p.content = string(data)
	return os.WriteFile(pdfPath, []byte("%PDF-1.4 stub"), 0o644)
}

func (p *fakePrinter) Close() error {
	p.Closed = true
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// writeTree creates files (slash-separated relative path -> content) under a
// new temporary directory and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

// argValue returns the argument following flag, or "".
func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// hasArg reports whether args contains arg.
func hasArg(args []string, arg string) bool {
	for _, a := range args {
		if a == arg {
			return true
		}
	}
	return false
}
