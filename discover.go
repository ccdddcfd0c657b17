package mdfusion

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alnah/go-mdfusion/internal/natsort"
)

// MarkdownExt is the only extension Discover collects.
const MarkdownExt = ".md"

// Discover returns the absolute paths of all Markdown files under root, at
// any depth, in natural order of their slash-separated relative paths.
//
// Returns an error wrapping ErrNotFound if root does not exist or is not a
// directory, and ErrRead if part of the tree cannot be listed. A tree without
// Markdown files yields an empty list and no error.
func Discover(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: root directory %s", ErrNotFound, root)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, root)
	}

	// WalkDir does not follow a symlinked root, so walk its target and
	// report paths under the root as given.
	walkRoot, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, root, err)
	}

	type entry struct {
		path string
		rel  string
	}
	var found []entry

	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: scanning %s: %v", ErrRead, path, err)
		}
		if d.IsDir() || filepath.Ext(path) != MarkdownExt {
			return nil
		}
		if !isRegularFile(path, d) {
			return nil
		}
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrRead, path, err)
		}
		found = append(found, entry{path: filepath.Join(abs, rel), rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	natsort.SortBy(found, func(e entry) string { return e.rel })

	files := make([]string, len(found))
	for i, e := range found {
		files[i] = e.path
	}
	return files, nil
}

// isRegularFile accepts regular files and symlinks that resolve to one.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
