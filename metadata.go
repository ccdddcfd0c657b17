package mdfusion

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdfusion/internal/yamlutil"
)

// DateFormat is the layout of the default metadata date (ISO 8601).
const DateFormat = "2006-01-02"

// Metadata is the title page information handed to Pandoc.
type Metadata struct {
	Title  string `yaml:"title,omitempty"`
	Author string `yaml:"author,omitempty"`
	Date   string `yaml:"date,omitempty"`
}

// IsZero reports whether no field is set.
func (m Metadata) IsZero() bool {
	return m.Title == "" && m.Author == "" && m.Date == ""
}

// merge fills the fields of m that are empty with those of other.
func (m Metadata) merge(other Metadata) Metadata {
	if m.Title == "" {
		m.Title = other.Title
	}
	if m.Author == "" {
		m.Author = other.Author
	}
	if m.Date == "" {
		m.Date = other.Date
	}
	return m
}

// MetadataEnv supplies the defaults that depend on the environment.
type MetadataEnv struct {
	Now  func() time.Time
	User func() string
}

// DefaultMetadataEnv uses the system clock and the current OS user.
func DefaultMetadataEnv() MetadataEnv {
	return MetadataEnv{Now: time.Now, User: CurrentUser}
}

// ResolveMetadata completes explicit values with fallback values (harvested
// from source front matter), then with defaults: the root directory name for
// the title, the OS user for the author and today's date for the date.
func ResolveMetadata(explicit, fallback Metadata, rootDir string, env MetadataEnv) Metadata {
	m := explicit.merge(fallback)
	if m.Title == "" && rootDir != "" {
		m.Title = filepath.Base(filepath.Clean(rootDir))
	}
	if m.Author == "" && env.User != nil {
		m.Author = env.User()
	}
	if m.Date == "" && env.Now != nil {
		m.Date = env.Now().Format(DateFormat)
	}
	return m
}

// PrependMetadata places a YAML metadata block holding meta in front of doc.
// Empty fields are omitted.
func PrependMetadata(doc string, meta Metadata) (string, error) {
	block, err := yamlutil.FrontMatter(meta)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return block + doc, nil
}

// CurrentUser returns the login name of the current user, or "" when it
// cannot be determined.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		name := u.Username
		// Windows reports DOMAIN\user.
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
