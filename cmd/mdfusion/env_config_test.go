package main

// Notes:
// - Tests use t.Setenv() which prevents t.Parallel().

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-mdfusion/internal/config"
	"github.com/alnah/go-mdfusion/internal/logging"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("MDFUSION_CONFIG", "/etc/mdfusion.toml")
	t.Setenv("MDFUSION_ROOT_DIR", "/notes")
	t.Setenv("MDFUSION_OUTPUT", "/out/book.pdf")
	t.Setenv("MDFUSION_TITLE", "Snails")
	t.Setenv("MDFUSION_AUTHOR", "Ada")
	t.Setenv("MDFUSION_DATE", "2024-01-31")
	t.Setenv("MDFUSION_HEADER_TEX", "/tex/h.tex")
	t.Setenv("MDFUSION_PANDOC_ARGS", "--number-sections  -V x=y")
	t.Setenv("MDFUSION_FOOTER_TEXT", "Footer")
	t.Setenv("MDFUSION_CHROMIUM_PATH", "/opt/chrome")
	t.Setenv("MDFUSION_TIMEOUT", "90s")

	got := loadEnvConfig()
	want := &envConfig{
		ConfigPath:   "/etc/mdfusion.toml",
		RootDir:      "/notes",
		Output:       "/out/book.pdf",
		Title:        "Snails",
		Author:       "Ada",
		Date:         "2024-01-31",
		HeaderTex:    "/tex/h.tex",
		PandocArgs:   "--number-sections  -V x=y",
		FooterText:   "Footer",
		ChromiumPath: "/opt/chrome",
		Timeout:      "90s",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("loadEnvConfig() = %+v, want %+v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - env overrides config
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	title, author := "From Config", "Config Author"
	cfg := &config.Config{}
	cfg.MDFusion.Title = &title
	cfg.MDFusion.Author = &author
	cfg.MDFusion.PandocArgs = config.Args{"--listings"}

	applyEnvConfig(&envConfig{Title: "From Env", PandocArgs: "--toc -N", Timeout: "30s"}, cfg)

	if *cfg.MDFusion.Title != "From Env" {
		t.Errorf("Title = %q, want env value", *cfg.MDFusion.Title)
	}
	if *cfg.MDFusion.Author != "Config Author" {
		t.Errorf("Author = %q, unset env must keep config value", *cfg.MDFusion.Author)
	}
	if !reflect.DeepEqual(cfg.MDFusion.PandocArgs, config.Args{"--toc", "-N"}) {
		t.Errorf("PandocArgs = %q", cfg.MDFusion.PandocArgs)
	}
	if cfg.Presentation.Timeout == nil || *cfg.Presentation.Timeout != "30s" {
		t.Errorf("Timeout = %v, want 30s", cfg.Presentation.Timeout)
	}
	if cfg.MDFusion.Output != nil {
		t.Error("Output should stay unset")
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("MDFUSION_AUTOR", "typo")
	t.Setenv("MDFUSION_TITLE", "fine")

	var buf bytes.Buffer
	warnUnknownEnvVars(logging.New(&buf, logging.LevelNormal))

	out := buf.String()
	if !strings.Contains(out, "MDFUSION_AUTOR") {
		t.Errorf("expected warning for MDFUSION_AUTOR, got %q", out)
	}
	if strings.Contains(out, "MDFUSION_TITLE") {
		t.Errorf("known variable should not warn, got %q", out)
	}
}
