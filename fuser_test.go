package mdfusion

// Notes:
// - pandoc is replaced by fakeRunner; OnRun plays its part by writing the
//   file named after -o, so the pipeline stages after rendering still run.
// - Decks are printed by fakePrinter, no browser is started.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// pandocStub returns an OnRun hook that writes content to the -o target and
// records the merged Markdown and the LaTeX header pandoc would have read.
func pandocStub(content string, merged, header *string) func(args []string) error {
	return func(args []string) error {
		if merged != nil {
			data, err := os.ReadFile(argValue(args, "-s"))
			if err != nil {
				return err
			}
			*merged = string(data)
		}
		if header != nil {
			for _, a := range args {
				if path, ok := strings.CutPrefix(a, "--include-in-header="); ok {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					*header = string(data)
				}
			}
		}
		return os.WriteFile(argValue(args, "-o"), []byte(content), 0o644)
	}
}

func fixedMetadataEnv() MetadataEnv {
	return MetadataEnv{
		Now:  func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) },
		User: func() string { return "ada" },
	}
}

// ---------------------------------------------------------------------------
// TestFuser_Run - PDF pipeline
// ---------------------------------------------------------------------------

func TestFuser_Run_PDFDefaults(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"notes/10-end.md":     "# End\n",
		"notes/2-middle.md":   "# Middle\n\n![alt text](img/shell.png)\n",
		"notes/img/shell.png": "png",
	})
	notes := filepath.Join(root, "notes")

	var merged, header string
	runner := &fakeRunner{OnRun: pandocStub("%PDF-1.4 stub", &merged, &header)}
	f := NewFuser(WithRunner(runner), WithMetadataEnv(fixedMetadataEnv()))

	res, err := f.Run(context.Background(), Job{RootDir: notes})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantOut := filepath.Join(notes, "notes.pdf")
	if res.Output != wantOut {
		t.Errorf("Output = %q, want %q", res.Output, wantOut)
	}
	if len(res.Files) != 2 || filepath.Base(res.Files[0]) != "2-middle.md" {
		t.Errorf("Files = %v, want natural order with 2-middle.md first", res.Files)
	}
	if len(res.MissingImages) != 0 {
		t.Errorf("MissingImages = %v, want none", res.MissingImages)
	}

	if !strings.Contains(merged, "# Middle") || !strings.Contains(merged, DefaultSeparator+"# End") {
		t.Errorf("merged document unexpected:\n%s", merged)
	}
	if !strings.Contains(merged, "![]("+filepath.Join(notes, "img", "shell.png")+")") {
		t.Errorf("image not rewritten or alt text kept:\n%s", merged)
	}
	if strings.HasPrefix(merged, "---") {
		t.Error("metadata block added without title page or metadata")
	}
	if !strings.Contains(header, `\usepackage{float}`) {
		t.Errorf("header missing built-in preamble:\n%s", header)
	}

	args := runner.lastCall(t)
	if args[0] != PandocBin {
		t.Errorf("program = %q, want %q", args[0], PandocBin)
	}
	if hasArg(args, "--toc") || hasArg(args, "revealjs") {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestFuser_Run_WorkingDirectoryDefault(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"docs/a.md": "a"})
	docs := filepath.Join(root, "docs")

	runner := &fakeRunner{OnRun: pandocStub("%PDF", nil, nil)}
	res, err := NewFuser(WithRunner(runner), WithWorkingDir(docs)).Run(context.Background(), Job{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := filepath.Join(docs, "docs.pdf"); res.Output != want {
		t.Errorf("Output = %q, want %q", res.Output, want)
	}
}

func TestFuser_Run_Metadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		job          Job
		files        map[string]string
		wantContains []string
		wantBlock    bool
	}{
		{
			name:         "title page uses defaults",
			job:          Job{TitlePage: true},
			files:        map[string]string{"notes/a.md": "body"},
			wantContains: []string{"title: notes", "author: ada", "2024-03-01"},
			wantBlock:    true,
		},
		{
			name:         "explicit title requests block",
			job:          Job{Metadata: Metadata{Title: "Snails", Author: "Grace"}},
			files:        map[string]string{"notes/a.md": "body"},
			wantContains: []string{"title: Snails", "author: Grace"},
			wantBlock:    true,
		},
		{
			name:         "stripped front matter is carried over",
			job:          Job{StripFrontMatter: true},
			files:        map[string]string{"notes/a.md": "---\ntitle: From Source\n---\nbody"},
			wantContains: []string{"title: From Source", "author: ada"},
			wantBlock:    true,
		},
		{
			name:      "no request no block",
			job:       Job{},
			files:     map[string]string{"notes/a.md": "body"},
			wantBlock: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := writeTree(t, tt.files)
			job := tt.job
			job.RootDir = filepath.Join(root, "notes")

			var merged string
			runner := &fakeRunner{OnRun: pandocStub("%PDF", &merged, nil)}
			f := NewFuser(WithRunner(runner), WithMetadataEnv(fixedMetadataEnv()))

			if _, err := f.Run(context.Background(), job); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got := strings.HasPrefix(merged, "---\n"); got != tt.wantBlock {
				t.Fatalf("metadata block present = %v, want %v:\n%s", got, tt.wantBlock, merged)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(merged, want) {
					t.Errorf("merged missing %q:\n%s", want, merged)
				}
			}
			if !strings.HasSuffix(merged, "body") {
				t.Errorf("merged should end with the source body:\n%s", merged)
			}
		})
	}
}

func TestFuser_Run_PassesOptions(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.md": "a", "custom.tex": `\setmainfont{Inter}`})
	kept := filepath.Join(t.TempDir(), "build")

	var header string
	runner := &fakeRunner{OnRun: pandocStub("%PDF", nil, &header)}
	job := Job{
		RootDir:    root,
		Output:     filepath.Join(t.TempDir(), "out", "book.pdf"),
		TOC:        true,
		HeaderTex:  filepath.Join(root, "custom.tex"),
		MergedDir:  kept,
		PandocArgs: []string{"--number-sections"},
		Verbose:    true,
	}

	res, err := NewFuser(WithRunner(runner)).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Output != job.Output {
		t.Errorf("Output = %q, want %q", res.Output, job.Output)
	}

	args := runner.lastCall(t)
	for _, want := range []string{"--toc", "--number-sections", "--verbose"} {
		if !hasArg(args, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}
	if !strings.Contains(header, `\setmainfont{Inter}`) {
		t.Errorf("user header not included:\n%s", header)
	}
	if _, err := os.Stat(filepath.Join(kept, MergedFileName)); err != nil {
		t.Errorf("merged file not kept: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestFuser_Run_Errors
// ---------------------------------------------------------------------------

func TestFuser_Run_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		files      map[string]string
		job        func(root string) Job
		runner     *fakeRunner
		wantErr    []error
		wantNoCall bool
	}{
		{
			name:       "pandoc missing",
			files:      map[string]string{"a.md": "a"},
			job:        func(root string) Job { return Job{RootDir: root} },
			runner:     &fakeRunner{Missing: map[string]bool{PandocBin: true}},
			wantErr:    []error{ErrToolNotFound, ErrExternalTool},
			wantNoCall: true,
		},
		{
			name:       "xelatex missing for PDF output",
			files:      map[string]string{"a.md": "a"},
			job:        func(root string) Job { return Job{RootDir: root} },
			runner:     &fakeRunner{Missing: map[string]bool{PDFEngine: true}},
			wantErr:    []error{ErrToolNotFound},
			wantNoCall: true,
		},
		{
			name:       "root without markdown",
			files:      map[string]string{"readme.txt": "x"},
			job:        func(root string) Job { return Job{RootDir: root} },
			runner:     &fakeRunner{},
			wantErr:    []error{ErrNotFound, ErrNoMarkdown},
			wantNoCall: true,
		},
		{
			name:       "root missing",
			files:      map[string]string{},
			job:        func(root string) Job { return Job{RootDir: filepath.Join(root, "absent")} },
			runner:     &fakeRunner{},
			wantErr:    []error{ErrNotFound},
			wantNoCall: true,
		},
		{
			name:       "strict images",
			files:      map[string]string{"a.md": "![x](gone.png)"},
			job:        func(root string) Job { return Job{RootDir: root, StrictImages: true} },
			runner:     &fakeRunner{},
			wantErr:    []error{ErrNotFound},
			wantNoCall: true,
		},
		{
			name:  "deck output must be html",
			files: map[string]string{"a.md": "a"},
			job: func(root string) Job {
				return Job{RootDir: root, Presentation: true, Output: filepath.Join(root, "deck.pdf")}
			},
			runner:     &fakeRunner{},
			wantErr:    []error{ErrInvalidOutput},
			wantNoCall: true,
		},
		{
			name:       "explicit header missing",
			files:      map[string]string{"a.md": "a"},
			job:        func(root string) Job { return Job{RootDir: root, HeaderTex: filepath.Join(root, "none.tex")} },
			runner:     &fakeRunner{},
			wantErr:    []error{ErrNotFound},
			wantNoCall: true,
		},
		{
			name:    "pandoc fails",
			files:   map[string]string{"a.md": "a"},
			job:     func(root string) Job { return Job{RootDir: root} },
			runner:  &fakeRunner{Stderr: "Error producing PDF.\n", Err: &exitError{code: 43}},
			wantErr: []error{ErrExternalTool},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := writeTree(t, tt.files)
			_, err := NewFuser(WithRunner(tt.runner)).Run(context.Background(), tt.job(root))
			if err == nil {
				t.Fatal("Run() expected error")
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("Run() error = %v, want %v", err, want)
				}
			}
			if tt.wantNoCall && len(tt.runner.Calls) > 0 {
				t.Errorf("pandoc should not run, got %v", tt.runner.Calls)
			}
		})
	}
}

func TestFuser_Run_ToolError(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.md": "a"})
	runner := &fakeRunner{Stderr: "Error producing PDF.\n", Err: &exitError{code: 43}}

	_, err := NewFuser(WithRunner(runner)).Run(context.Background(), Job{RootDir: root})

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("Run() error = %T %v, want *ToolError", err, err)
	}
	if toolErr.ExitCode != 43 {
		t.Errorf("ExitCode = %d, want 43", toolErr.ExitCode)
	}
	if !strings.Contains(toolErr.Error(), "Error producing PDF.") {
		t.Errorf("Error() = %q, want stderr line", toolErr.Error())
	}
}

func TestFuser_Run_MissingImagesReported(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.md": "![x](gone.png)"})
	runner := &fakeRunner{OnRun: pandocStub("%PDF", nil, nil)}

	res, err := NewFuser(WithRunner(runner)).Run(context.Background(), Job{RootDir: root})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.MissingImages) != 1 {
		t.Errorf("MissingImages = %v, want 1", res.MissingImages)
	}
}

// ---------------------------------------------------------------------------
// TestFuser_Run_Presentation - deck generation and printing
// ---------------------------------------------------------------------------

func TestFuser_Run_Presentation(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"1.md": "## Shells\n\n- spiral", "2.md": "## Feet\n"})
	out := filepath.Join(t.TempDir(), "talk.html")

	var merged string
	runner := &fakeRunner{
		Missing: map[string]bool{PDFEngine: true},
		OnRun:   pandocStub(sampleDeck, &merged, nil),
	}
	printer := &fakePrinter{}
	f := NewFuser(WithRunner(runner), WithPrinter(printer))

	job := Job{
		RootDir:      root,
		Output:       out,
		Presentation: true,
		Deck:         DeckConfig{FooterText: "Snail Society", AnimateAllLines: true},
	}
	res, err := f.Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.DeckPDF != DeckPDFPath(out) {
		t.Errorf("DeckPDF = %q, want %q", res.DeckPDF, DeckPDFPath(out))
	}
	if printer.Deck != out {
		t.Errorf("printed deck = %q, want %q", printer.Deck, out)
	}
	for _, want := range []string{"mdfusion-footer", `class="fragment"`} {
		if !strings.Contains(printer.content, want) {
			t.Errorf("printed deck missing %q", want)
		}
	}
	if strings.Contains(merged, `\newpage`) {
		t.Errorf("deck sources should not be joined with page breaks:\n%s", merged)
	}

	args := runner.lastCall(t)
	if argValue(args, "-t") != "revealjs" {
		t.Errorf("args = %v, want -t revealjs", args)
	}
	for _, a := range args {
		if strings.HasPrefix(a, "--include-in-header=") {
			t.Errorf("LaTeX header passed for deck: %v", args)
		}
	}
	if argValue(args, "-H") == "" {
		t.Errorf("deck header not passed: %v", args)
	}
}

func TestFuser_Run_PresentationPrintTimeout(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"1.md": "## One"})
	runner := &fakeRunner{OnRun: pandocStub(sampleDeck, nil, nil)}
	printer := &fakePrinter{Err: context.DeadlineExceeded}

	job := Job{RootDir: root, Output: filepath.Join(t.TempDir(), "d.html"), Presentation: true, Timeout: time.Second}
	_, err := NewFuser(WithRunner(runner), WithPrinter(printer)).Run(context.Background(), job)

	if !errors.Is(err, ErrPageLoad) || !errors.Is(err, ErrExternalTool) {
		t.Errorf("Run() error = %v, want ErrPageLoad", err)
	}
}
