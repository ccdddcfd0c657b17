package mdfusion

import (
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-mdfusion/internal/assets"
)

// Job holds the full configuration of one run.
type Job struct {
	// RootDir is the directory scanned for Markdown files. Empty = cwd.
	RootDir string
	// Output is the artifact path. Empty = <root>/<rootname>.pdf, or .html
	// in presentation mode.
	Output string

	TOC       bool
	TitlePage bool
	// Metadata holds explicitly supplied title, author and date. A non-empty
	// title or author requests the metadata block even without TitlePage.
	Metadata Metadata

	// PandocArgs are passed to pandoc verbatim, after the generated ones.
	PandocArgs []string

	// HeaderTex is a LaTeX file appended to the built-in preamble.
	// With HeaderTexOptional, a missing file is skipped instead of failing.
	HeaderTex         string
	HeaderTexOptional bool

	// MergedDir keeps merged.md and the generated includes in this directory
	// instead of a temporary one removed after the run.
	MergedDir string

	// RemoveAltTexts lists alt texts cleared from images. Nil =
	// DefaultRemoveAltTexts, empty = keep all.
	RemoveAltTexts   []string
	StripFrontMatter bool
	StrictImages     bool
	Verbose          bool

	Presentation bool
	Deck         DeckConfig
	ChromiumPath string
	// Timeout bounds browser printing. Zero = DefaultPrintTimeout.
	Timeout time.Duration
}

// DeckConfig holds the presentation options applied to a generated deck.
type DeckConfig struct {
	// FooterText is shown at the bottom of every slide. Empty = no footer.
	FooterText string
	// AnimateAllLines reveals slide content one element at a time.
	AnimateAllLines bool
}

// Result describes the artifacts of a successful run.
type Result struct {
	// Output is the main artifact (PDF or deck HTML).
	Output string
	// DeckPDF is the printed deck, set in presentation mode.
	DeckPDF string
	// Files lists the merged sources in merge order.
	Files []string
	// Pages is the page count of the PDF artifact, 0 when unknown.
	Pages int
	// MissingImages lists local image references that do not exist.
	MissingImages []MissingImage
}

// DefaultPrintTimeout bounds deck printing when Job.Timeout is zero.
const DefaultPrintTimeout = 2 * time.Minute

// Option configures a Fuser.
type Option func(*Fuser)

// WithRunner replaces the command runner used for pandoc.
func WithRunner(r CommandRunner) Option {
	return func(f *Fuser) {
		f.runner = r
	}
}

// WithPrinter replaces the deck printer.
func WithPrinter(p DeckPrinter) Option {
	return func(f *Fuser) {
		f.printer = p
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *Fuser) {
		if l != nil {
			f.log = l
		}
	}
}

// WithAssetLoader replaces the embedded asset loader.
func WithAssetLoader(l assets.AssetLoader) Option {
	return func(f *Fuser) {
		f.assets = l
	}
}

// WithMetadataEnv replaces the clock and user lookup used for metadata
// defaults.
func WithMetadataEnv(env MetadataEnv) Option {
	return func(f *Fuser) {
		f.metaEnv = env
	}
}

// WithWorkingDir sets the directory used when Job.RootDir is empty.
func WithWorkingDir(dir string) Option {
	return func(f *Fuser) {
		f.cwd = dir
	}
}
