// Package dateutil resolves the document date. A literal date is used as
// given; "auto" and "auto:FORMAT" stand for the day of the run.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxFormatLength limits format string length.
const MaxFormatLength = 50

// DefaultFormat is used for a bare "auto". It matches the ISO 8601 date
// written on title pages by default.
const DefaultFormat = "YYYY-MM-DD"

// autoKeyword selects the current date.
const autoKeyword = "auto"

// tokens maps format tokens to Go layout components, longest first so
// scanning is greedy.
var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts usable as "auto:<name>" (case-insensitive).
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// segment is one piece of a parsed format: a Go layout for a single token,
// or literal text copied as is.
type segment struct {
	layout  string
	literal string
}

// parse splits format into token and literal segments. Tokens: YYYY, YY,
// MMMM, MMM, MM, M, DD, D. Text inside brackets is literal ("[Week of] D
// MMM"), as is any other character.
func parse(format string) ([]segment, error) {
	if format == "" {
		return nil, fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxFormatLength {
		return nil, fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxFormatLength)
	}

	var segs []segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for rest := format; rest != ""; {
		if rest[0] == '[' {
			literal, after, ok := strings.Cut(rest[1:], "]")
			if !ok {
				pos := len(format) - len(rest)
				return nil, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, pos)
			}
			lit.WriteString(literal)
			rest = after
			continue
		}

		token, layout := matchToken(rest)
		if token == "" {
			lit.WriteByte(rest[0])
			rest = rest[1:]
			continue
		}
		flush()
		segs = append(segs, segment{layout: layout})
		rest = rest[len(token):]
	}
	flush()

	return segs, nil
}

// Format renders t with a format such as "DD/MM/YYYY". Only tokens go
// through time.Format, so literal text never turns into date fields.
func Format(format string, t time.Time) (string, error) {
	segs, err := parse(format)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(format) + 8)
	for _, s := range segs {
		if s.layout == "" {
			b.WriteString(s.literal)
			continue
		}
		b.WriteString(t.Format(s.layout))
	}
	return b.String(), nil
}

// matchToken returns the token at the start of s and its layout, or "" when
// s does not start with one.
func matchToken(s string) (token, layout string) {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.token) {
			return t.token, t.layout
		}
	}
	return "", ""
}

// Resolve returns the date to print for value:
//   - "" stays empty so the caller can apply its own default
//   - "auto" is now formatted with DefaultFormat
//   - "auto:FORMAT" or "auto:<preset>" is now formatted with that format
//   - anything else is returned unchanged
func Resolve(value string, now time.Time) (string, error) {
	keyword, format, hasFormat := strings.Cut(value, ":")
	if !strings.EqualFold(keyword, autoKeyword) {
		return value, nil
	}

	if !hasFormat {
		format = DefaultFormat
	} else if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}

	return Format(format, now)
}
