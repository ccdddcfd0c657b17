// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrFileNameEmpty         = errors.New("file name cannot be empty")
	ErrFileNamePathTraversal = errors.New("file name contains path separator or null byte")
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---
	FilePermissions = 0o644 // rw-r--r--
)

// WorkDir prepares the directory that holds intermediate files of one run.
// When keep is non-empty it is created if needed and left in place afterwards;
// otherwise a fresh temporary directory is created and cleanup removes it.
func WorkDir(keep string) (dir string, cleanup func(), err error) {
	if keep != "" {
		if err := os.MkdirAll(keep, DirPermissions); err != nil {
			return "", nil, fmt.Errorf("creating work directory: %w", err)
		}
		abs, err := filepath.Abs(keep)
		if err != nil {
			return "", nil, fmt.Errorf("resolving work directory: %w", err)
		}
		return abs, func() {}, nil
	}

	dir, err = os.MkdirTemp("", "mdfusion_")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp directory: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// WriteWorkFile writes content to dir/name and returns the full path.
// The name must be a bare file name.
func WriteWorkFile(dir, name, content string) (string, error) {
	if err := ValidateFileName(name); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), FilePermissions); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ValidateFileName checks that name cannot escape its directory.
func ValidateFileName(name string) error {
	if name == "" {
		return ErrFileNameEmpty
	}
	if strings.ContainsAny(name, "/\\\x00") || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrFileNamePathTraversal, name)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsRemoteRef reports whether a link destination points somewhere other than
// a relative local path: a URL with a scheme (http:, data:, file:, mailto:),
// a protocol-relative "//host" reference, or a fragment-only "#anchor".
//
// Single-letter schemes are not treated as URLs so Windows drive paths such
// as "C:/img.png" are left to filepath.IsAbs.
func IsRemoteRef(s string) bool {
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "#") {
		return true
	}
	return schemeLength(s) >= 2
}

// schemeLength returns the length of a leading RFC 3986 scheme followed by
// ':' or 0 if there is none.
func schemeLength(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			continue
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
			continue
		case c == ':' && i > 0:
			return i
		default:
			return 0
		}
	}
	return 0
}
