// Package pipeline holds the text and tree transforms mdfusion applies
// around Pandoc.
//
// Before Pandoc runs, Markdown sources are normalized and their image
// references rewritten:
//   - line ending normalization
//   - alt text stripping for configured sentinel values
//   - relative image destinations resolved against the source file directory
//
// After Pandoc has produced a reveal.js deck, the HTML tree is adjusted:
//   - fragment classes on slide content (progressive reveal)
//   - a footer element inside the reveal container
//
// Fenced code blocks are left untouched by the Markdown transforms.
package pipeline
