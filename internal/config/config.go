// Package config loads mdfusion configuration files.
//
// Two formats are accepted: TOML (mdfusion.toml) and YAML (mdfusion.yaml or
// mdfusion.yml). Both share the same shape, a [mdfusion] section and a
// [presentation] section. Unknown sections and keys are rejected.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alnah/go-mdfusion/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// DefaultNames lists the file names searched when no config path is given,
// in lookup order.
var DefaultNames = []string{"mdfusion.toml", "mdfusion.yaml", "mdfusion.yml"}

// Config holds the values read from a config file. Pointer fields are nil when
// the file does not set them, so callers can tell "unset" from "false".
type Config struct {
	MDFusion     Section      `toml:"mdfusion" yaml:"mdfusion"`
	Presentation Presentation `toml:"presentation" yaml:"presentation"`

	// Path is the absolute path of the loaded file. Empty for a zero Config.
	Path string `toml:"-" yaml:"-"`
}

// Section is the [mdfusion] table.
type Section struct {
	RootDir        *string  `toml:"root_dir" yaml:"root_dir"`
	Output         *string  `toml:"output" yaml:"output"`
	TitlePage      *bool    `toml:"title_page" yaml:"title_page"`
	Title          *string  `toml:"title" yaml:"title"`
	Author         *string  `toml:"author" yaml:"author"`
	Date           *string  `toml:"date" yaml:"date"`
	PandocArgs     Args     `toml:"pandoc_args" yaml:"pandoc_args"`
	HeaderTex      *string  `toml:"header_tex" yaml:"header_tex"`
	MergedMD       *string  `toml:"merged_md" yaml:"merged_md"`
	RemoveAltTexts []string `toml:"remove_alt_texts" yaml:"remove_alt_texts"`
	TOC            *bool    `toml:"toc" yaml:"toc"`
	Verbose        *bool    `toml:"verbose" yaml:"verbose"`
	StrictImages   *bool    `toml:"strict_images" yaml:"strict_images"`

	StripFrontMatter *bool `toml:"strip_front_matter" yaml:"strip_front_matter"`

	// Presentation keys are also accepted here for older config files.
	// Load folds them into Config.Presentation.
	Presentation    *bool   `toml:"presentation" yaml:"presentation"`
	FooterText      *string `toml:"footer_text" yaml:"footer_text"`
	AnimateAllLines *bool   `toml:"animate_all_lines" yaml:"animate_all_lines"`
	ChromiumPath    *string `toml:"chromium_path" yaml:"chromium_path"`
}

// Presentation is the [presentation] table.
type Presentation struct {
	Presentation    *bool   `toml:"presentation" yaml:"presentation"`
	FooterText      *string `toml:"footer_text" yaml:"footer_text"`
	AnimateAllLines *bool   `toml:"animate_all_lines" yaml:"animate_all_lines"`
	ChromiumPath    *string `toml:"chromium_path" yaml:"chromium_path"`
	Timeout         *string `toml:"timeout" yaml:"timeout"` // Go duration, e.g. "90s"
}

// Args is a list of command-line arguments. In a config file it may be
// written either as a list or as a single whitespace-separated string.
type Args []string

// UnmarshalTOML implements toml.Unmarshaler.
func (a *Args) UnmarshalTOML(v any) error {
	return a.set(v)
}

// UnmarshalYAML implements the goccy/go-yaml InterfaceUnmarshaler.
func (a *Args) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	return a.set(v)
}

func (a *Args) set(v any) error {
	switch val := v.(type) {
	case nil:
		*a = nil
	case string:
		*a = strings.Fields(val)
	case []any:
		out := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("pandoc_args[%d]: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		*a = out
	default:
		return fmt.Errorf("pandoc_args: expected string or list, got %T", v)
	}
	return nil
}

// Find returns the first default config file present in dir, or "" when
// there is none.
func Find(dir string) string {
	for _, name := range DefaultNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// Load reads and validates the config file at path. Files ending in .yaml or
// .yml are decoded as YAML, anything else as TOML. Relative paths inside the
// file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	data, err := os.ReadFile(abs) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		err = decodeTOML(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	cfg.Path = abs
	cfg.foldLegacyKeys()
	cfg.resolvePaths(filepath.Dir(abs))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return &cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config key(s): %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return yamlutil.UnmarshalStrict(data, cfg)
}

// Validate checks values that the decoders cannot check by type alone.
func (c *Config) Validate() error {
	if t := c.Presentation.Timeout; t != nil {
		d, err := time.ParseDuration(*t)
		if err != nil {
			return fmt.Errorf("presentation.timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("presentation.timeout: must be positive, got %s", d)
		}
	}
	for i, alt := range c.MDFusion.RemoveAltTexts {
		if alt == "" {
			return fmt.Errorf("mdfusion.remove_alt_texts[%d]: empty value", i)
		}
	}
	return nil
}

// TimeoutOr returns the configured presentation timeout, or def when unset.
// Call only on a validated Config.
func (c *Config) TimeoutOr(def time.Duration) time.Duration {
	if c == nil || c.Presentation.Timeout == nil {
		return def
	}
	d, err := time.ParseDuration(*c.Presentation.Timeout)
	if err != nil {
		return def
	}
	return d
}

// foldLegacyKeys moves presentation keys written under [mdfusion] into the
// presentation section. Values set in [presentation] win.
func (c *Config) foldLegacyKeys() {
	m, p := &c.MDFusion, &c.Presentation
	if p.Presentation == nil {
		p.Presentation = m.Presentation
	}
	if p.FooterText == nil {
		p.FooterText = m.FooterText
	}
	if p.AnimateAllLines == nil {
		p.AnimateAllLines = m.AnimateAllLines
	}
	if p.ChromiumPath == nil {
		p.ChromiumPath = m.ChromiumPath
	}
	m.Presentation, m.FooterText, m.AnimateAllLines, m.ChromiumPath = nil, nil, nil, nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{c.MDFusion.RootDir, c.MDFusion.Output, c.MDFusion.HeaderTex, c.MDFusion.MergedMD} {
		if p == nil || *p == "" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(base, *p)
	}
}

// MergeList combines a config list with command-line items: config entries
// first, then command-line entries the config does not already contain.
func MergeList(fromConfig, fromCLI []string) []string {
	if len(fromConfig) == 0 {
		return fromCLI
	}
	seen := make(map[string]struct{}, len(fromConfig))
	for _, item := range fromConfig {
		seen[item] = struct{}{}
	}
	out := append([]string(nil), fromConfig...)
	for _, item := range fromCLI {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
