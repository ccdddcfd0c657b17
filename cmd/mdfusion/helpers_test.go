package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-mdfusion"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// stubPandoc implements mdfusion.CommandRunner. Run writes a stub artifact
// to the -o target instead of spawning pandoc.
type stubPandoc struct {
	mu sync.Mutex

	Missing map[string]bool
	Stderr  string
	Err     error

	Args []string
}

func (s *stubPandoc) LookPath(name string) (string, error) {
	if s.Missing[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

func (s *stubPandoc) Run(_ context.Context, _ string, args []string, _, stderr io.Writer) error {
	s.mu.Lock()
	s.Args = append([]string(nil), args...)
	s.mu.Unlock()

	_, _ = io.WriteString(stderr, s.Stderr)
	if s.Err != nil {
		return s.Err
	}
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-o" {
			return os.WriteFile(args[i+1], []byte("%PDF-1.4 stub"), 0o644)
		}
	}
	return nil
}

// exitError mimics *exec.ExitError.
type exitError struct{ code int }

func (e *exitError) Error() string { return "exit status" }
func (e *exitError) ExitCode() int { return e.code }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// testEnv returns an Environment rooted at cwd that captures output.
func testEnv(cwd string, opts ...mdfusion.Option) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:          func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
		Stdout:       &stdout,
		Stderr:       &stderr,
		Getwd:        func() (string, error) { return cwd, nil },
		LookPath:     func(name string) (string, error) { return "", &exec.Error{Name: name, Err: exec.ErrNotFound} },
		FuserOptions: opts,
	}
	return env, &stdout, &stderr
}

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

func hasArg(args []string, arg string) bool {
	for _, a := range args {
		if a == arg {
			return true
		}
	}
	return false
}

// stubPrinter implements mdfusion.DeckPrinter by writing a stub PDF.
type stubPrinter struct {
	Err error
}

func (p *stubPrinter) PrintPDF(_ context.Context, _, pdfPath string) error {
	if p.Err != nil {
		return p.Err
	}
	return os.WriteFile(pdfPath, []byte("%PDF-1.4 stub"), 0o644)
}

func (p *stubPrinter) Close() error { return nil }
