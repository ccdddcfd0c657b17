// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdfusion/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by common CI services.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// InCI reports whether a CI service variable is set.
func InCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant settings.
func ForBrowserConnect(chromiumPath string) string {
	var hints []string

	if (InCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if chromiumPath != "" && !fileutil.FileExists(chromiumPath) {
		hints = append(hints, "chromium not found at "+chromiumPath+", use --chromium-path")
	} else if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "use --chromium-path or ROD_BROWSER_BIN to pick a browser")
	}

	return formatHints(hints)
}

// ForToolNotFound returns an installation hint for a missing external tool.
func ForToolNotFound(tool string) string {
	switch tool {
	case "pandoc":
		return format("install pandoc: https://pandoc.org/installing.html")
	case "xelatex":
		return format("install a TeX distribution with XeLaTeX (TeX Live, MiKTeX, or TinyTeX)")
	case "":
		return ""
	default:
		return format("make sure " + tool + " is installed and on PATH")
	}
}

// ForUnknownOption returns a hint for an option the external tool rejected.
func ForUnknownOption(option, tool string) string {
	if option == "" {
		return ""
	}
	return format("argument '" + option + "' not recognized. Try: " + tool + " --help")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large decks, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound() string {
	return format("use --config /path/to/mdfusion.toml or create mdfusion.toml in the current directory")
}

// ForNoMarkdown returns a hint when a root directory has no Markdown files.
func ForNoMarkdown() string {
	return format("only files ending in .md are merged; pass the root directory as the first argument")
}

// ForPresentationOutput returns a hint for a non-HTML presentation output.
func ForPresentationOutput() string {
	return format("presentations are written as .html; the PDF is produced next to it")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
