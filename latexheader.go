package mdfusion

import (
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-mdfusion/internal/assets"
)

// Markers around the user's header in the generated preamble.
const (
	userHeaderBegin = "% --- begin user header.tex ---"
	userHeaderEnd   = "% --- end user header.tex ---"
)

// BuildLaTeXHeader appends userHeader, wrapped in marker comments, to the
// built-in preamble base. An empty userHeader yields base alone.
func BuildLaTeXHeader(base, userHeader string) string {
	if userHeader == "" {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	if !strings.HasSuffix(base, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("\n" + userHeaderBegin + "\n")
	b.WriteString(userHeader)
	b.WriteString("\n" + userHeaderEnd + "\n")
	return b.String()
}

// loadLaTeXHeader builds the preamble for a job. A missing HeaderTex fails
// with ErrNotFound unless it is optional.
func loadLaTeXHeader(loader assets.AssetLoader, path string, optional bool) (string, error) {
	base, err := loader.Load(assets.LaTeXHeader)
	if err != nil {
		return "", fmt.Errorf("loading LaTeX header: %w", err)
	}
	if path == "" {
		return base, nil
	}

	user, err := os.ReadFile(path) // #nosec G304 -- header path is user-provided
	switch {
	case err == nil:
		return BuildLaTeXHeader(base, string(user)), nil
	case os.IsNotExist(err) && optional:
		return base, nil
	case os.IsNotExist(err):
		return "", fmt.Errorf("%w: header file %s", ErrNotFound, path)
	default:
		return "", fmt.Errorf("%w: header file %s: %v", ErrRead, path, err)
	}
}
