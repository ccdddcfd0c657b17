package mdfusion

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdfusion/internal/assets"
)

// ---------------------------------------------------------------------------
// TestBuildLaTeXHeader
// ---------------------------------------------------------------------------

func TestBuildLaTeXHeader(t *testing.T) {
	t.Parallel()

	base := "\\usepackage{float}\n"

	if got := BuildLaTeXHeader(base, ""); got != base {
		t.Errorf("BuildLaTeXHeader(base, \"\") = %q, want base", got)
	}

	got := BuildLaTeXHeader(base, `\usepackage{fontspec}`)
	want := base + "\n" + userHeaderBegin + "\n\\usepackage{fontspec}\n" + userHeaderEnd + "\n"
	if got != want {
		t.Errorf("BuildLaTeXHeader()\n got: %q\nwant: %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestLoadLaTeXHeader - user header resolution
// ---------------------------------------------------------------------------

func TestLoadLaTeXHeader(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"header.tex": `\setmainfont{Inter}`})
	loader := assets.NewEmbeddedLoader()

	tests := []struct {
		name         string
		path         string
		optional     bool
		wantContains []string
		wantErr      error
	}{
		{
			name:         "built-in only",
			wantContains: []string{`\usepackage[margin=1in]{geometry}`, `\floatplacement{figure}{H}`},
		},
		{
			name:         "user header appended",
			path:         filepath.Join(dir, "header.tex"),
			wantContains: []string{`\usepackage{sectsty}`, userHeaderBegin, `\setmainfont{Inter}`, userHeaderEnd},
		},
		{
			name:     "optional missing header skipped",
			path:     filepath.Join(dir, "absent.tex"),
			optional: true,
		},
		{
			name:    "explicit missing header fails",
			path:    filepath.Join(dir, "absent.tex"),
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loadLaTeXHeader(loader, tt.path, tt.optional)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("loadLaTeXHeader() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("header missing %q:\n%s", want, got)
				}
			}
			if tt.optional && strings.Contains(got, userHeaderBegin) {
				t.Error("missing optional header should not add markers")
			}
		})
	}
}
