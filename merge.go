package mdfusion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"

	"github.com/alnah/go-mdfusion/internal/pipeline"
)

// Separators placed between consecutive files.
const (
	// DefaultSeparator forces a page break in LaTeX output.
	DefaultSeparator = "\n\n\\newpage\n\n"
	// BlankSeparator only ends the previous block. Used for decks, where
	// headings already start new slides.
	BlankSeparator = "\n\n"
)

// DefaultRemoveAltTexts returns the alt texts cleared when none are
// configured.
func DefaultRemoveAltTexts() []string {
	return []string{"alt text"}
}

// Document is the result of a merge.
type Document struct {
	// Content is the merged Markdown.
	Content string
	// Sources lists the merged files in order.
	Sources []string
	// FrontMatter holds the first title, author and date found in the
	// sources' front matter. Only filled when front matter is stripped.
	FrontMatter Metadata
}

// Merger concatenates Markdown files into one document.
type Merger struct {
	// Separator goes between consecutive files, never after the last.
	// Empty = DefaultSeparator.
	Separator string
	// RemoveAltTexts lists alt texts to clear (exact, case-sensitive match).
	RemoveAltTexts []string
	// StripFrontMatter removes a leading YAML/TOML/JSON front matter block
	// from each file and harvests its title, author and date.
	StripFrontMatter bool

	log *zap.SugaredLogger
}

// NewMerger returns a Merger using DefaultSeparator and
// DefaultRemoveAltTexts.
func NewMerger() *Merger {
	return &Merger{
		Separator:      DefaultSeparator,
		RemoveAltTexts: DefaultRemoveAltTexts(),
	}
}

// Merge reads files in order and joins them into one Document. Relative image
// destinations in each file are rewritten to absolute paths resolved against
// that file's directory.
//
// Any unreadable file aborts the merge with an error wrapping ErrRead. An
// empty list yields an empty Document.
func (m *Merger) Merge(files []string) (*Document, error) {
	sep := m.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	doc := &Document{Sources: make([]string, 0, len(files))}
	var b strings.Builder

	for i, path := range files {
		content, meta, err := m.load(path)
		if err != nil {
			return nil, err
		}
		doc.FrontMatter = doc.FrontMatter.merge(meta)

		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(content)
		doc.Sources = append(doc.Sources, path)

		if m.log != nil {
			m.log.Debugf("merged %s", path)
		}
	}

	doc.Content = b.String()
	return doc, nil
}

// load reads one source and applies the per-file transforms.
func (m *Merger) load(path string) (string, Metadata, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- paths come from Discover or the caller
	if err != nil {
		return "", Metadata{}, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}
	if !utf8.Valid(data) {
		return "", Metadata{}, fmt.Errorf("%w: %s: invalid UTF-8", ErrRead, path)
	}

	content := pipeline.NormalizeLineEndings(string(data))

	var meta Metadata
	if m.StripFrontMatter {
		content, meta, err = splitFrontMatter(content)
		if err != nil {
			return "", Metadata{}, fmt.Errorf("%w: %s: front matter: %v", ErrRead, path, err)
		}
	}

	content = pipeline.StripAltText(content, m.RemoveAltTexts)

	content, err = pipeline.RewriteImageLinks(content, filepath.Dir(path))
	if err != nil {
		return "", Metadata{}, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}

	return content, meta, nil
}

// frontMatterFields is decoded leniently: other keys are ignored and
// values may be scalars or lists.
type frontMatterFields struct {
	Title  any `yaml:"title" toml:"title" json:"title"`
	Author any `yaml:"author" toml:"author" json:"author"`
	Date   any `yaml:"date" toml:"date" json:"date"`
}

// splitFrontMatter removes a leading front matter block. Content without one
// is returned unchanged.
func splitFrontMatter(content string) (string, Metadata, error) {
	var fm frontMatterFields
	body, err := frontmatter.Parse(strings.NewReader(content), &fm)
	if err != nil {
		return "", Metadata{}, err
	}
	if len(body) == len(content) {
		return content, Metadata{}, nil
	}
	meta := Metadata{
		Title:  scalarString(fm.Title),
		Author: scalarString(fm.Author),
		Date:   scalarString(fm.Date),
	}
	return strings.TrimLeft(string(body), "\n"), meta, nil
}

// scalarString flattens a decoded front matter value. Lists are joined with
// ", " and dates are formatted as DateFormat.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case time.Time:
		return val.Format(DateFormat)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := scalarString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
