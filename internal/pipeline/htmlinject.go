package pipeline

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FooterClass is the class of the element InjectFooter appends.
const FooterClass = "mdfusion-footer"

// ParseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func ParseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.TrimSpace(content)

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(strings.ToLower(trimmed), "<!doctype") ||
		strings.HasPrefix(strings.ToLower(trimmed), "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// RenderHTML writes the tree back out.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func RenderHTML(w io.Writer, doc *html.Node, isFragment bool) error {
	if !isFragment {
		return html.Render(w, doc)
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// InjectFooter appends a footer element holding text to the reveal.js
// container of a deck, falling back to <body> and then to the root. The text
// is stored as a text node, so the renderer escapes it. Returns false when
// text is empty and nothing was added.
func InjectFooter(doc *html.Node, text string) bool {
	if text == "" {
		return false
	}

	parent := findElement(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, "reveal")
	})
	if parent == nil {
		parent = findElement(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	}
	if parent == nil {
		parent = doc
	}

	footer := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr:     []html.Attribute{{Key: "class", Val: FooterClass}},
	}
	footer.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	parent.AppendChild(footer)
	return true
}

// findElement returns the first element in document order matching pred.
func findElement(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		if strings.TrimSpace(a.Val) == "" {
			n.Attr[i].Val = class
		} else {
			n.Attr[i].Val = a.Val + " " + class
		}
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}
