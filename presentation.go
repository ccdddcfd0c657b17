package mdfusion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdfusion/internal/fileutil"
	"github.com/alnah/go-mdfusion/internal/pipeline"
)

// ValidateDeckOutput checks that a presentation is written as HTML.
func ValidateDeckOutput(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".html") {
		return fmt.Errorf("%w: presentations must be written to .html, got %s", ErrInvalidOutput, path)
	}
	return nil
}

// DeckPDFPath returns the path the printed deck is written to: the deck path
// with its extension replaced by .pdf.
func DeckPDFPath(deck string) string {
	return strings.TrimSuffix(deck, filepath.Ext(deck)) + ".pdf"
}

// ProcessDeck rewrites the deck at path in place according to cfg: fragment
// classes when cfg.AnimateAllLines is set, then the footer. Returns the
// number of elements turned into fragments.
func ProcessDeck(path string, cfg DeckConfig) (int, error) {
	if cfg.FooterText == "" && !cfg.AnimateAllLines {
		return 0, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- deck written by pandoc in this run
	if err != nil {
		return 0, fmt.Errorf("%w: deck %s: %v", ErrRead, path, err)
	}

	out, marked, err := processDeckHTML(string(data), cfg)
	if err != nil {
		return 0, fmt.Errorf("%w: deck %s: %v", ErrRead, path, err)
	}

	if err := os.WriteFile(path, []byte(out), fileutil.FilePermissions); err != nil { // #nosec G306 -- output artifact, world-readable like pandoc's
		return 0, fmt.Errorf("writing deck %s: %w", path, err)
	}
	return marked, nil
}

// processDeckHTML applies cfg to an HTML document held in memory.
func processDeckHTML(content string, cfg DeckConfig) (string, int, error) {
	doc, isFragment, err := pipeline.ParseHTML(content)
	if err != nil {
		return "", 0, err
	}

	marked := 0
	if cfg.AnimateAllLines {
		marked = pipeline.ApplyFragments(doc)
	}
	pipeline.InjectFooter(doc, cfg.FooterText)

	var b strings.Builder
	b.Grow(len(content) + len(cfg.FooterText) + 64)
	if err := pipeline.RenderHTML(&b, doc, isFragment); err != nil {
		return "", 0, err
	}
	return b.String(), marked, nil
}
