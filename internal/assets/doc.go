// Package assets provides the files mdfusion hands to Pandoc alongside the
// merged document.
//
// # Contents
//
// All assets are embedded at compile time:
//
//	templates/
//	├── latex-header.tex   # default preamble for PDF output (margins, floats)
//	└── deck-header.html   # styles included in reveal.js decks (footer)
//
// Asset names are validated to prevent path traversal before lookup.
package assets
