package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdfusion/internal/fileutil"
)

// RewriteImageLinks resolves every relative image destination in content
// against sourceDir, producing an absolute filesystem path. If sourceDir is
// empty, returns the content unchanged.
//
// Left byte-identical:
//   - absolute paths
//   - URLs with a scheme (http, https, data, file, mailto, ...)
//   - protocol-relative references (//host/path) and anchors (#id)
//   - images inside fenced code blocks
//
// A link title after the destination is preserved. Resolved paths containing
// spaces are wrapped in angle brackets so the Markdown stays valid.
func RewriteImageLinks(content, sourceDir string) (string, error) {
	if sourceDir == "" {
		return content, nil
	}

	// Make sourceDir absolute for consistent path resolution
	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	return replaceImages(content, func(match, alt, inner string) string {
		dest, rest := splitDestination(inner)
		if !isRelativePath(dest) {
			return match
		}
		return "![" + alt + "](" + formatDestination(filepath.Join(absSourceDir, dest)) + rest + ")"
	}), nil
}

// splitDestination separates a destination from an optional trailing title.
// rest keeps its leading whitespace so it can be re-emitted verbatim.
func splitDestination(inner string) (dest, rest string) {
	trimmed := strings.TrimLeft(inner, " \t")
	if strings.HasPrefix(trimmed, "<") {
		if end := strings.IndexByte(trimmed, '>'); end > 0 {
			return trimmed[1:end], trimmed[end+1:]
		}
	}
	if i := strings.IndexAny(trimmed, " \t\n"); i >= 0 {
		return trimmed[:i], trimmed[i:]
	}
	return trimmed, ""
}

// formatDestination wraps paths with spaces in angle brackets.
func formatDestination(path string) string {
	if strings.ContainsAny(path, " \t") {
		return "<" + path + ">"
	}
	return path
}

// isRelativePath returns true if the destination should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	// Skip URLs, protocol-relative references and anchors
	if fileutil.IsRemoteRef(path) {
		return false
	}

	// Skip absolute paths
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}

	return true
}
