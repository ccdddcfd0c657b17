package mdfusion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/alnah/go-mdfusion/internal/assets"
	"github.com/alnah/go-mdfusion/internal/fileutil"
	"github.com/alnah/go-mdfusion/internal/logging"
	"github.com/alnah/go-mdfusion/internal/pdfinfo"
)

// Names of the files written to the work directory.
const (
	MergedFileName     = "merged.md"
	headerFileName     = "header.tex"
	deckHeaderFileName = "deck-header.html"
)

// Fuser runs the whole pipeline: discovery, merge, Pandoc and, for decks,
// post-processing and printing. Create with NewFuser.
type Fuser struct {
	runner  CommandRunner
	printer DeckPrinter
	assets  assets.AssetLoader
	log     *zap.SugaredLogger
	metaEnv MetadataEnv
	cwd     string
}

// NewFuser creates a Fuser with production collaborators.
func NewFuser(opts ...Option) *Fuser {
	f := &Fuser{
		runner:  &ExecRunner{},
		assets:  assets.NewEmbeddedLoader(),
		log:     logging.Nop(),
		metaEnv: DefaultMetadataEnv(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run executes job. The returned error wraps ErrNotFound, ErrRead,
// ErrInvalidOutput or ErrExternalTool (a *ToolError when pandoc fails).
func (f *Fuser) Run(ctx context.Context, job Job) (*Result, error) {
	job, err := f.prepare(job)
	if err != nil {
		return nil, err
	}

	if err := f.checkRequirements(job); err != nil {
		return nil, err
	}

	files, err := Discover(job.RootDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %w in %s", ErrNotFound, ErrNoMarkdown, job.RootDir)
	}
	f.log.Debugf("found %d Markdown files under %s", len(files), job.RootDir)

	missing, err := CheckImages(files)
	if err != nil {
		return nil, err
	}
	for _, m := range missing {
		f.log.Warn(m.String())
	}
	if job.StrictImages && len(missing) > 0 {
		return nil, fmt.Errorf("%w: %d image reference(s) point to missing files, first: %s",
			ErrNotFound, len(missing), missing[0])
	}

	content, err := f.merge(job, files)
	if err != nil {
		return nil, err
	}

	workDir, cleanup, err := fileutil.WorkDir(job.MergedDir)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	req, err := f.renderRequest(job, workDir, files, content)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), fileutil.DirPermissions); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	if err := NewPandocRenderer(f.runner, f.log).Render(ctx, req); err != nil {
		return nil, err
	}

	res := &Result{Output: job.Output, Files: files, MissingImages: missing}

	if job.Presentation {
		if err := f.finishDeck(ctx, job, res); err != nil {
			return nil, err
		}
	}

	f.countPages(res)
	return res, nil
}

// prepare fills defaults and validates the job.
func (f *Fuser) prepare(job Job) (Job, error) {
	if job.RootDir == "" {
		cwd := f.cwd
		if cwd == "" {
			var err error
			if cwd, err = os.Getwd(); err != nil {
				return job, fmt.Errorf("resolving working directory: %w", err)
			}
		}
		job.RootDir = cwd
		f.log.Infof("using %s as root directory", cwd)
	}

	root, err := filepath.Abs(job.RootDir)
	if err != nil {
		return job, fmt.Errorf("%w: %s: %v", ErrRead, job.RootDir, err)
	}
	job.RootDir = root

	if job.Output == "" {
		ext := ".pdf"
		if job.Presentation {
			ext = ".html"
		}
		job.Output = filepath.Join(root, filepath.Base(root)+ext)
	}
	if job.Output, err = filepath.Abs(job.Output); err != nil {
		return job, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if job.Presentation {
		if err := ValidateDeckOutput(job.Output); err != nil {
			return job, err
		}
	}
	if job.Timeout <= 0 {
		job.Timeout = DefaultPrintTimeout
	}
	if job.RemoveAltTexts == nil {
		job.RemoveAltTexts = DefaultRemoveAltTexts()
	}
	return job, nil
}

// checkRequirements verifies the external programs the job needs.
func (f *Fuser) checkRequirements(job Job) error {
	if _, err := f.runner.LookPath(PandocBin); err != nil {
		return toolNotFound(PandocBin, err)
	}
	if IsPDF(job.Output) {
		if _, err := f.runner.LookPath(PDFEngine); err != nil {
			return toolNotFound(PDFEngine, err)
		}
	}
	return nil
}

// merge builds the merged Markdown, including the metadata block when the
// job asks for one.
func (f *Fuser) merge(job Job, files []string) (string, error) {
	m := &Merger{
		Separator:        DefaultSeparator,
		RemoveAltTexts:   job.RemoveAltTexts,
		StripFrontMatter: job.StripFrontMatter,
		log:              f.log,
	}
	if job.Presentation {
		m.Separator = BlankSeparator
	}

	doc, err := m.Merge(files)
	if err != nil {
		return "", err
	}

	if !wantsMetadata(job, doc) {
		return doc.Content, nil
	}
	meta := ResolveMetadata(job.Metadata, doc.FrontMatter, job.RootDir, f.metaEnv)
	f.log.Debugf("metadata: title=%q author=%q date=%q", meta.Title, meta.Author, meta.Date)
	return PrependMetadata(doc.Content, meta)
}

// wantsMetadata reports whether a metadata block is prepended: on request,
// when a title or author is given, or when stripped front matter carried
// values that would otherwise be lost.
func wantsMetadata(job Job, doc *Document) bool {
	return job.TitlePage || job.Metadata.Title != "" || job.Metadata.Author != "" ||
		!doc.FrontMatter.IsZero()
}

// renderRequest writes the intermediate files and describes the pandoc run.
func (f *Fuser) renderRequest(job Job, workDir string, files []string, content string) (RenderRequest, error) {
	merged, err := fileutil.WriteWorkFile(workDir, MergedFileName, content)
	if err != nil {
		return RenderRequest{}, err
	}
	f.log.Debugf("merged document written to %s", merged)

	req := RenderRequest{
		Input:        merged,
		Output:       job.Output,
		ResourceDirs: ResourceDirs(files),
		TOC:          job.TOC,
		Presentation: job.Presentation,
		ExtraArgs:    job.PandocArgs,
		Verbose:      job.Verbose,
	}

	if IsPDF(job.Output) {
		header, err := loadLaTeXHeader(f.assets, job.HeaderTex, job.HeaderTexOptional)
		if err != nil {
			return RenderRequest{}, err
		}
		if req.HeaderTex, err = fileutil.WriteWorkFile(workDir, headerFileName, header); err != nil {
			return RenderRequest{}, err
		}
	}

	if job.Presentation {
		deckHeader, err := f.assets.Load(assets.DeckHeader)
		if err != nil {
			return RenderRequest{}, fmt.Errorf("loading deck header: %w", err)
		}
		if req.DeckHeader, err = fileutil.WriteWorkFile(workDir, deckHeaderFileName, deckHeader); err != nil {
			return RenderRequest{}, err
		}
	}

	return req, nil
}

// finishDeck post-processes the deck and prints it to PDF.
func (f *Fuser) finishDeck(ctx context.Context, job Job, res *Result) error {
	marked, err := ProcessDeck(job.Output, job.Deck)
	if err != nil {
		return err
	}
	if marked > 0 {
		f.log.Debugf("animated %d slide elements", marked)
	}

	if job.ChromiumPath != "" && !fileutil.FileExists(job.ChromiumPath) {
		f.log.Warnf("chromium not found at %s, falling back to the default browser lookup", job.ChromiumPath)
	}

	printer := f.printer
	if printer == nil {
		rp := NewRodPrinter(job.ChromiumPath, job.Timeout)
		defer func() { _ = rp.Close() }()
		printer = rp
	}

	printCtx, cancel := context.WithTimeout(ctx, job.Timeout)
	defer cancel()

	pdfPath := DeckPDFPath(job.Output)
	if err := printer.PrintPDF(printCtx, job.Output, pdfPath); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && !errors.Is(err, ErrExternalTool) {
			return browserError(ErrPageLoad, fmt.Errorf("printing timed out after %s: %w", job.Timeout, err))
		}
		return err
	}
	res.DeckPDF = pdfPath
	return nil
}

// countPages records the page count of the PDF artifact. Failures are only
// logged since the artifact itself was produced.
func (f *Fuser) countPages(res *Result) {
	path := res.DeckPDF
	if path == "" && IsPDF(res.Output) {
		path = res.Output
	}
	if path == "" {
		return
	}
	n, err := pdfinfo.PageCount(path)
	if err != nil {
		f.log.Debugf("page count unavailable: %v", err)
		return
	}
	res.Pages = n
}
