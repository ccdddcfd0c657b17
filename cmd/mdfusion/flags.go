package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage reports invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// metadataFlags holds title page flags.
type metadataFlags struct {
	titlePage bool
	title     string
	author    string
	date      string
}

// pandocFlags holds flags that shape the pandoc invocation.
type pandocFlags struct {
	args      string
	headerTex string
	mergedMD  string
	toc       bool
}

// contentFlags holds flags applied while merging sources.
type contentFlags struct {
	removeAltTexts   []string
	stripFrontMatter bool
	strictImages     bool
}

// presentationFlags holds reveal.js deck flags.
type presentationFlags struct {
	enabled         bool
	footerText      string
	animateAllLines bool
	chromiumPath    string
	timeout         string
}

// fuseFlags holds all flags of the merge command.
type fuseFlags struct {
	common       commonFlags
	output       string
	metadata     metadataFlags
	pandoc       pandocFlags
	content      contentFlags
	presentation presentationFlags

	// changed records the flags given explicitly, by long name.
	changed map[string]bool
}

// set reports whether the flag was given on the command line.
func (f *fuseFlags) set(name string) bool {
	return f.changed[name]
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path (default: mdfusion.toml, mdfusion.yaml)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show progress and pandoc output")
}

// addMetadataFlags adds title page flags to a FlagSet.
func addMetadataFlags(fs *flag.FlagSet, f *metadataFlags) {
	fs.BoolVar(&f.titlePage, "title-page", false, "add a title page")
	fs.StringVar(&f.title, "title", "", "document title (default: root directory name)")
	fs.StringVar(&f.author, "author", "", "document author (default: current user)")
	fs.StringVar(&f.date, "date", "", "document date, or auto[:FORMAT] (default: today)")
}

// addPandocFlags adds pandoc flags to a FlagSet.
func addPandocFlags(fs *flag.FlagSet, f *pandocFlags) {
	fs.StringVar(&f.args, "pandoc-args", "", "extra pandoc arguments, whitespace separated")
	fs.StringVar(&f.headerTex, "header-tex", "", "LaTeX file appended to the preamble (default: ./header.tex if present)")
	fs.StringVar(&f.mergedMD, "merged-md", "", "keep merged.md in this directory")
	fs.BoolVar(&f.toc, "toc", false, "add a table of contents")
}

// addContentFlags adds merge flags to a FlagSet.
func addContentFlags(fs *flag.FlagSet, f *contentFlags) {
	fs.StringSliceVar(&f.removeAltTexts, "remove-alt-texts", nil, "image alt texts to clear (default: \"alt text\")")
	fs.BoolVar(&f.stripFrontMatter, "strip-front-matter", false, "remove front matter from each file, keeping title, author and date")
	fs.BoolVar(&f.strictImages, "strict-images", false, "fail when a local image is missing")
}

// addPresentationFlags adds deck flags to a FlagSet.
func addPresentationFlags(fs *flag.FlagSet, f *presentationFlags) {
	fs.BoolVar(&f.enabled, "presentation", false, "build a reveal.js deck and print it to PDF")
	fs.StringVar(&f.footerText, "footer-text", "", "footer shown on every slide")
	fs.BoolVar(&f.animateAllLines, "animate-all-lines", false, "reveal slide content one element at a time")
	fs.StringVar(&f.chromiumPath, "chromium-path", "", "browser used to print the deck")
	fs.StringVar(&f.timeout, "timeout", "", "deck printing timeout (e.g., 90s, 2m)")
}

// newFuseFlagSet registers every merge flag on a new FlagSet bound to f.
func newFuseFlagSet(f *fuseFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("mdfusion", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output file (default: <root>/<root name>.pdf)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addMetadataFlags(fs, &f.metadata)
	addPandocFlags(fs, &f.pandoc)
	addContentFlags(fs, &f.content)
	addPresentationFlags(fs, &f.presentation)

	return fs
}

// parseFuseFlags parses the merge command line. It returns the flags, the
// positional arguments and the arguments after "--", passed to pandoc as is.
// --help prints the usage to usage.
func parseFuseFlags(args []string, usage io.Writer) (*fuseFlags, []string, []string, error) {
	f := &fuseFlags{changed: map[string]bool{}}
	fs := newFuseFlagSet(f)

	// pflag prints the usage for --help; parse errors are reported once by
	// the caller.
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printFuseUsage(usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, nil, err
		}
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	positional := fs.Args()
	var extra []string
	if dash := fs.ArgsLenAtDash(); dash >= 0 {
		extra = positional[dash:]
		positional = positional[:dash]
	}
	if len(positional) > 1 {
		return nil, nil, nil, fmt.Errorf("%w: expected at most one root directory, got %q", ErrUsage, positional)
	}

	return f, positional, extra, nil
}
