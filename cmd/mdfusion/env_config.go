package main

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-mdfusion/internal/config"
)

// envConfig holds configuration from MDFUSION_* environment variables.
// Provides CI/CD-friendly overrides without a config file. Values may also
// come from a .env file loaded at startup.
type envConfig struct {
	ConfigPath   string // MDFUSION_CONFIG: config file path
	RootDir      string // MDFUSION_ROOT_DIR: directory to merge
	Output       string // MDFUSION_OUTPUT: output file
	Title        string // MDFUSION_TITLE: document title
	Author       string // MDFUSION_AUTHOR: document author
	Date         string // MDFUSION_DATE: document date
	HeaderTex    string // MDFUSION_HEADER_TEX: LaTeX header file
	PandocArgs   string // MDFUSION_PANDOC_ARGS: extra pandoc arguments
	FooterText   string // MDFUSION_FOOTER_TEXT: deck footer
	ChromiumPath string // MDFUSION_CHROMIUM_PATH: browser for deck printing
	Timeout      string // MDFUSION_TIMEOUT: deck printing timeout
}

// knownEnvVars lists valid MDFUSION_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDFUSION_CONFIG":        true,
	"MDFUSION_ROOT_DIR":      true,
	"MDFUSION_OUTPUT":        true,
	"MDFUSION_TITLE":         true,
	"MDFUSION_AUTHOR":        true,
	"MDFUSION_DATE":          true,
	"MDFUSION_HEADER_TEX":    true,
	"MDFUSION_PANDOC_ARGS":   true,
	"MDFUSION_FOOTER_TEXT":   true,
	"MDFUSION_CHROMIUM_PATH": true,
	"MDFUSION_TIMEOUT":       true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath:   os.Getenv("MDFUSION_CONFIG"),
		RootDir:      os.Getenv("MDFUSION_ROOT_DIR"),
		Output:       os.Getenv("MDFUSION_OUTPUT"),
		Title:        os.Getenv("MDFUSION_TITLE"),
		Author:       os.Getenv("MDFUSION_AUTHOR"),
		Date:         os.Getenv("MDFUSION_DATE"),
		HeaderTex:    os.Getenv("MDFUSION_HEADER_TEX"),
		PandocArgs:   os.Getenv("MDFUSION_PANDOC_ARGS"),
		FooterText:   os.Getenv("MDFUSION_FOOTER_TEXT"),
		ChromiumPath: os.Getenv("MDFUSION_CHROMIUM_PATH"),
		Timeout:      os.Getenv("MDFUSION_TIMEOUT"),
	}
}

// warnUnknownEnvVars logs warnings for unrecognized MDFUSION_* variables.
// Helps catch typos like MDFUSION_AUTOR instead of MDFUSION_AUTHOR.
func warnUnknownEnvVars(log *zap.SugaredLogger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDFUSION_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				log.Warnf("unknown environment variable %s (typo?)", name)
			}
		}
	}
}

// applyEnvConfig overrides config values with the environment variables that
// are set. This gives: CLI flags > env vars > config file > defaults
// (CLI flags are applied later in buildJob).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	m, p := &cfg.MDFusion, &cfg.Presentation

	setString(&m.RootDir, env.RootDir)
	setString(&m.Output, env.Output)
	setString(&m.Title, env.Title)
	setString(&m.Author, env.Author)
	setString(&m.Date, env.Date)
	setString(&m.HeaderTex, env.HeaderTex)
	setString(&p.FooterText, env.FooterText)
	setString(&p.ChromiumPath, env.ChromiumPath)
	setString(&p.Timeout, env.Timeout)

	if env.PandocArgs != "" {
		m.PandocArgs = config.Args(strings.Fields(env.PandocArgs))
	}
}

// setString points dst at v when v is non-empty.
func setString(dst **string, v string) {
	if v != "" {
		*dst = &v
	}
}
