package mdfusion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-mdfusion/internal/logging"
	"github.com/alnah/go-mdfusion/internal/process"
)

// External programs and fixed Pandoc settings.
const (
	PandocBin   = "pandoc"
	PDFEngine   = "xelatex"
	RevealJSURL = "https://cdn.jsdelivr.net/npm/reveal.js@4"
)

// waitDelay bounds how long Run waits for output pipes after the child is
// killed.
const waitDelay = 5 * time.Second

// Patterns pandoc uses to report a rejected command-line option.
var unknownOptionPatterns = []*regexp.Regexp{
	regexp.MustCompile("unrecognized option `([^']+)'"),
	regexp.MustCompile(`Unknown option (-{1,2}[^\s.]+)`),
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	// LookPath resolves an executable name on PATH.
	LookPath(name string) (string, error)
	// Run executes name with args and blocks until it exits or ctx is done.
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// ExecRunner implements CommandRunner using os/exec. The child runs in its
// own process group, which is killed as a whole when ctx is cancelled.
type ExecRunner struct{}

// LookPath implements CommandRunner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- arguments are built by the renderer
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	process.Isolate(cmd)
	cmd.Cancel = process.CancelTree(cmd)
	cmd.WaitDelay = waitDelay
	return cmd.Run()
}

// RenderRequest describes one Pandoc invocation.
type RenderRequest struct {
	// Input is the merged Markdown file.
	Input string
	// Output is the file Pandoc writes. Its extension selects the format.
	Output string
	// ResourceDirs are searched for images; typically the source directories.
	ResourceDirs []string
	// HeaderTex is included in the LaTeX preamble (PDF output only).
	HeaderTex string
	TOC       bool
	// Presentation switches to reveal.js; DeckHeader is included in <head>.
	Presentation bool
	DeckHeader   string
	// ExtraArgs are appended verbatim.
	ExtraArgs []string
	Verbose   bool
}

// PandocRenderer turns a merged Markdown file into the final artifact.
type PandocRenderer struct {
	Runner CommandRunner
	log    *zap.SugaredLogger
}

// NewPandocRenderer creates a PandocRenderer. A nil runner uses ExecRunner.
func NewPandocRenderer(runner CommandRunner, log *zap.SugaredLogger) *PandocRenderer {
	if runner == nil {
		runner = &ExecRunner{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &PandocRenderer{Runner: runner, log: log}
}

// Args builds the pandoc command line for req, without the program name.
func (p *PandocRenderer) Args(req RenderRequest) []string {
	args := []string{
		"-s", req.Input,
		"-o", req.Output,
		"--pdf-engine=" + PDFEngine,
	}
	if len(req.ResourceDirs) > 0 {
		args = append(args, "--resource-path="+strings.Join(req.ResourceDirs, string(os.PathListSeparator)))
	}
	if req.HeaderTex != "" && IsPDF(req.Output) {
		args = append(args, "--include-in-header="+req.HeaderTex)
	}
	if req.TOC {
		args = append(args, "--toc")
	}
	if req.Presentation {
		args = append(args, "-t", "revealjs", "-V", "revealjs-url="+RevealJSURL)
		if req.DeckHeader != "" {
			args = append(args, "-H", req.DeckHeader)
		}
	}
	args = append(args, req.ExtraArgs...)
	if req.Verbose && !contains(args, "--verbose") {
		args = append(args, "--verbose")
	}
	return args
}

// Render runs pandoc for req. Pandoc's output is forwarded to the debug log.
//
// Returns an error matching ErrToolNotFound when pandoc is not on PATH and a
// *ToolError when it exits non-zero.
func (p *PandocRenderer) Render(ctx context.Context, req RenderRequest) error {
	if _, err := p.Runner.LookPath(PandocBin); err != nil {
		return toolNotFound(PandocBin, err)
	}

	args := p.Args(req)
	p.log.Debugf("running %s %s", PandocBin, strings.Join(args, " "))

	var stderr bytes.Buffer
	outLog := &logging.LineWriter{Log: p.log.Debug, Prefix: "pandoc: "}
	errLog := &logging.LineWriter{Log: p.log.Debug, Prefix: "pandoc: "}

	err := p.Runner.Run(ctx, PandocBin, args, outLog, io.MultiWriter(&stderr, errLog))
	outLog.Flush()
	errLog.Flush()

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", PandocBin, ctxErr)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return toolNotFound(PandocBin, err)
	}

	return &ToolError{
		Tool:          PandocBin,
		Args:          args,
		ExitCode:      exitCode(err),
		Stderr:        stderr.String(),
		UnknownOption: unknownOption(stderr.String()),
		Err:           err,
	}
}

// ResourceDirs returns the sorted unique parent directories of files.
func ResourceDirs(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	dirs := make([]string, 0, len(files))
	for _, f := range files {
		d := filepath.Dir(f)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// exitCode extracts the process exit status, or 1 when it is unknown.
func exitCode(err error) int {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		if code := coded.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}

// unknownOption returns the option pandoc rejected, if stderr reports one.
func unknownOption(stderr string) string {
	for _, re := range unknownOptionPatterns {
		if m := re.FindStringSubmatch(stderr); m != nil {
			return m[1]
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
