package pipeline

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Inline image syntax ![alt](destination "optional title")
	imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
)

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// StripAltText clears the alt text of every image whose alt text equals one
// of alts exactly. Other images are left byte-identical.
func StripAltText(content string, alts []string) string {
	if len(alts) == 0 {
		return content
	}
	strip := make(map[string]struct{}, len(alts))
	for _, a := range alts {
		strip[a] = struct{}{}
	}

	return replaceImages(content, func(match, alt, dest string) string {
		if _, ok := strip[alt]; !ok {
			return match
		}
		return "![](" + dest + ")"
	})
}

// imageReplacer receives the full match, the alt text and the raw text
// between the parentheses, and returns the replacement.
type imageReplacer func(match, alt, dest string) string

// replaceImages applies fn to every inline image outside code. Code is what
// goldmark parses as a fenced block, an indented block or a code span, the
// same reading the image checks use.
func replaceImages(content string, fn imageReplacer) string {
	if !strings.Contains(content, "![") {
		return content
	}
	matches := imagePattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}
	code := codeRanges([]byte(content))

	var out strings.Builder
	out.Grow(len(content))
	last := 0
	for _, m := range matches {
		if code.contains(m[0]) {
			continue
		}
		out.WriteString(content[last:m[0]])
		out.WriteString(fn(content[m[0]:m[1]], content[m[2]:m[3]], content[m[4]:m[5]]))
		last = m[1]
	}
	out.WriteString(content[last:])

	return out.String()
}

// byteRange is a half-open span of source offsets.
type byteRange struct{ start, stop int }

type byteRanges []byteRange

func (rs byteRanges) contains(off int) bool {
	for _, r := range rs {
		if off >= r.start && off < r.stop {
			return true
		}
	}
	return false
}

// codeRanges returns the source spans of every code block line and code span.
func codeRanges(src []byte) byteRanges {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var rs byteRanges
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindCodeBlock, ast.KindFencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				rs = append(rs, byteRange{seg.Start, seg.Stop})
			}
			return ast.WalkSkipChildren, nil
		case ast.KindCodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					rs = append(rs, byteRange{t.Segment.Start, t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return rs
}
