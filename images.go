package mdfusion

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-mdfusion/internal/fileutil"
)

// MissingImage is a local image reference whose target does not exist.
type MissingImage struct {
	// File is the Markdown source containing the reference.
	File string
	// Destination is the reference as written.
	Destination string
	// Resolved is the absolute path that was checked.
	Resolved string
}

// String formats the entry for diagnostics.
func (m MissingImage) String() string {
	return fmt.Sprintf("%s: image %q not found (looked for %s)", m.File, m.Destination, m.Resolved)
}

// CheckImages parses each file and reports local image references that do
// not point to an existing file. Relative destinations are resolved against
// the directory of the file that contains them. Remote references are not
// checked, and images inside code are not image nodes, so they are skipped.
func CheckImages(files []string) ([]MissingImage, error) {
	md := goldmark.New()
	var missing []MissingImage

	for _, path := range files {
		src, err := os.ReadFile(path) // #nosec G304 -- paths come from Discover
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
		}

		dir := filepath.Dir(path)
		doc := md.Parser().Parse(text.NewReader(src))

		err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			img, ok := n.(*ast.Image)
			if !ok {
				return ast.WalkContinue, nil
			}
			dest := string(img.Destination)
			if dest == "" || fileutil.IsRemoteRef(dest) {
				return ast.WalkContinue, nil
			}
			resolved := dest
			if !filepath.IsAbs(dest) {
				resolved = filepath.Join(dir, dest)
			}
			if !imageExists(resolved) {
				missing = append(missing, MissingImage{File: path, Destination: dest, Resolved: resolved})
			}
			return ast.WalkSkipChildren, nil
		})
		if err != nil {
			return nil, err
		}
	}

	return missing, nil
}

// imageExists also accepts percent-encoded paths (my%20image.png).
func imageExists(path string) bool {
	if fileutil.FileExists(path) {
		return true
	}
	decoded, err := url.PathUnescape(path)
	return err == nil && decoded != path && fileutil.FileExists(decoded)
}
