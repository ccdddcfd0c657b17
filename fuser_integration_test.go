//go:build integration

package mdfusion

// Notes:
// - Requires pandoc and xelatex on PATH; tests skip otherwise.
// - The deck test also needs a browser. Rod downloads Chromium on first run
//   if none is found, so it can be slow the first time.

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// testTimeout bounds each integration run.
const testTimeout = 2 * time.Minute

func requireTools(t *testing.T, tools ...string) {
	t.Helper()
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not on PATH", tool)
		}
	}
}

func assertValidPDFFile(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read PDF file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
}

func TestFuser_Run_PDF_Integration(t *testing.T) {
	requireTools(t, PandocBin, PDFEngine)

	root := writeTree(t, map[string]string{
		"1-intro.md":   "# Intro\n\nSnails are gastropods.\n",
		"2-shells.md":  "# Shells\n\n- spiral\n- hard\n",
		"10-feet.md":   "# Feet\n\nOne muscular foot.\n",
		"sub/notes.md": "## Notes\n\nMore text.\n",
	})

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	job := Job{
		RootDir:   root,
		Output:    filepath.Join(t.TempDir(), "book.pdf"),
		TOC:       true,
		TitlePage: true,
		Metadata:  Metadata{Title: "Snails"},
	}
	res, err := NewFuser().Run(ctx, job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	assertValidPDFFile(t, res.Output)
	if res.Pages < 4 {
		t.Errorf("Pages = %d, want at least one page per file", res.Pages)
	}
}

func TestFuser_Run_Presentation_Integration(t *testing.T) {
	requireTools(t, PandocBin)

	root := writeTree(t, map[string]string{
		"1.md": "## Shells\n\n- spiral\n- hard\n",
		"2.md": "## Feet\n\nOne muscular foot.\n",
	})

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	job := Job{
		RootDir:      root,
		Output:       filepath.Join(t.TempDir(), "talk.html"),
		Presentation: true,
		Deck:         DeckConfig{FooterText: "Snail Society", AnimateAllLines: true},
		Timeout:      testTimeout,
	}
	res, err := NewFuser().Run(ctx, job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	assertValidPDFFile(t, res.DeckPDF)
}

func TestExecRunner_Run_Integration(t *testing.T) {
	requireTools(t, PandocBin)

	var stdout, stderr bytes.Buffer
	err := (&ExecRunner{}).Run(context.Background(), PandocBin, []string{"--version"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Run() error = %v (stderr: %s)", err, stderr.String())
	}
	if !bytes.Contains(stdout.Bytes(), []byte("pandoc")) {
		t.Errorf("stdout = %q, want pandoc version banner", stdout.String())
	}
}
