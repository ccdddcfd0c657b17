// Package mdfusion merges a tree of Markdown documents into a single PDF or
// reveal.js slide deck.
//
// # Quick Start
//
// Run the whole pipeline with a Fuser:
//
//	f := mdfusion.NewFuser(mdfusion.WithLogger(logger))
//	res, err := f.Run(ctx, mdfusion.Job{
//	    RootDir: "docs",
//	    TOC:     true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("written", res.Output)
//
// # Merge Pipeline
//
//  1. Discover: collect every .md file under the root, natural-sorted by
//     relative path (02-setup.md before 10-appendix.md).
//  2. Merge: read each file, strip sentinel alt texts, rewrite relative image
//     destinations against the file's own directory, join with a separator
//     (a LaTeX page break by default) between files.
//  3. Metadata: optionally prepend a YAML block with title, author and date.
//  4. Render: hand the merged file to Pandoc (XeLaTeX for PDF, reveal.js for
//     decks).
//  5. Decks: add fragment animation and a footer, then print the deck to PDF
//     with headless Chromium (go-rod).
//
// The merge steps are usable on their own:
//
//	files, err := mdfusion.Discover("docs")
//	doc, err := mdfusion.NewMerger().Merge(files)
//
// # External Tools
//
// Pandoc and XeLaTeX must be on PATH. Decks additionally need Chromium; the
// go-rod library downloads a managed build when none is configured. Set
// ROD_BROWSER_BIN to use a specific binary and ROD_NO_SANDBOX=1 inside
// containers.
package mdfusion
