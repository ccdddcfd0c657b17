package mdfusion

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdfusion/internal/fileutil"
	"github.com/alnah/go-mdfusion/internal/process"
)

// DeckPrinter prints a reveal.js deck to PDF.
type DeckPrinter interface {
	PrintPDF(ctx context.Context, deckPath, pdfPath string) error
	Close() error
}

// Compile-time interface check.
var _ DeckPrinter = (*RodPrinter)(nil)

// revealReadySelector matches the reveal.js root once the deck is laid out.
const revealReadySelector = ".reveal.ready"

// waitFontsJS resolves when web fonts have finished loading.
const waitFontsJS = `() => document.fonts ? document.fonts.ready.then(() => true) : true`

// RodPrinter implements DeckPrinter using go-rod.
// Rod automatically downloads Chromium on first run if no binary is found.
type RodPrinter struct {
	// ChromiumPath is used when it points to an existing file.
	ChromiumPath string
	Timeout      time.Duration

	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodPrinter creates a RodPrinter. A non-positive timeout uses
// DefaultPrintTimeout.
func NewRodPrinter(chromiumPath string, timeout time.Duration) *RodPrinter {
	if timeout <= 0 {
		timeout = DefaultPrintTimeout
	}
	return &RodPrinter{ChromiumPath: chromiumPath, Timeout: timeout}
}

// BrowserBin returns the browser binary to launch: chromiumPath when it
// exists, else ROD_BROWSER_BIN, else "" to let rod find or download one.
func BrowserBin(chromiumPath string) string {
	if chromiumPath != "" && fileutil.FileExists(chromiumPath) {
		return chromiumPath
	}
	return os.Getenv("ROD_BROWSER_BIN")
}

// ensureBrowser lazily connects to the browser.
func (r *RodPrinter) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	bin := BrowserBin(r.ChromiumPath)
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") != "" || bin != "" && os.Getenv("ROD_BROWSER_BIN") == bin {
		l = l.NoSandbox(true)
	}

	r.launcher = l
	u, err := l.Launch()
	if err != nil {
		r.kill()
		return browserError(ErrBrowserConnect, err)
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.kill()
		return browserError(ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (r *RodPrinter) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.kill()
	return err
}

// kill stops the launched browser and any helper processes it spawned.
func (r *RodPrinter) kill() {
	if r.launcher == nil {
		return
	}
	if pid := r.launcher.PID(); pid > 0 {
		r.launcher.Kill()
		process.KillProcessGroup(pid)
	}
	r.launcher = nil
}

// PrintPDF opens deckPath in print mode (?print-pdf), waits until reveal.js
// is ready and fonts are loaded, and writes the PDF to pdfPath using the
// page size declared by the deck's CSS.
func (r *RodPrinter) PrintPDF(ctx context.Context, deckPath, pdfPath string) error {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.ensureBrowser(); err != nil {
		return err
	}

	target, err := printURL(deckPath)
	if err != nil {
		return browserError(ErrPageLoad, err)
	}

	// Wait for the page with timeout from context or default
	timeout := r.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return browserError(ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Timeout(timeout)
	if err := p.WaitLoad(); err != nil {
		return browserError(ErrPageLoad, err)
	}
	if _, err := p.Element(revealReadySelector); err != nil {
		return browserError(ErrPageLoad, fmt.Errorf("waiting for %s: %w", revealReadySelector, err))
	}
	if _, err := p.Eval(waitFontsJS); err != nil {
		return browserError(ErrPageLoad, fmt.Errorf("waiting for fonts: %w", err))
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		return err
	}

	reader, err := p.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return browserError(ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return browserError(ErrPDFGeneration, fmt.Errorf("reading PDF stream: %w", err))
	}

	if err := os.WriteFile(pdfPath, pdfBuf, fileutil.FilePermissions); err != nil { // #nosec G306 -- output artifact
		return fmt.Errorf("writing %s: %w", pdfPath, err)
	}
	return nil
}

// printURL converts a deck path to its file:// URL with the reveal.js print
// query. Handles both Unix and Windows paths.
func printURL(deckPath string) (string, error) {
	abs, err := filepath.Abs(deckPath)
	if err != nil {
		return "", err
	}
	path := filepath.ToSlash(abs)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path, RawQuery: "print-pdf"}
	return u.String(), nil
}
