package pipeline

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FragmentClass is the reveal.js class that makes an element appear on its
// own step.
const FragmentClass = "fragment"

// titleSlideID is the id pandoc gives the generated title slide.
const titleSlideID = "title-slide"

// fragmentTags lists the elements that become fragments inside a slide.
var fragmentTags = map[atom.Atom]bool{
	atom.Li:         true,
	atom.P:          true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Table:      true,
	atom.Figure:     true,
	atom.Img:        true,
}

// ApplyFragments marks the content of every slide section, except the title
// slide, as reveal.js fragments. Returns the number of elements marked.
//
// An eligible element that is, or contains, a fragment already is skipped and
// its children are visited instead. A marked element's subtree is not
// visited, so nested content never animates twice. Speaker notes are left
// alone.
func ApplyFragments(doc *html.Node) int {
	marked := 0

	var walk func(n *html.Node, inSlide bool)
	walk = func(n *html.Node, inSlide bool) {
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Section:
				inSlide = getAttr(n, "id") != titleSlideID
			case n.DataAtom == atom.Aside && hasClass(n, "notes"):
				return
			case inSlide && fragmentTags[n.DataAtom] && !containsFragment(n):
				addClass(n, FragmentClass)
				marked++
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inSlide)
		}
	}
	walk(doc, false)

	return marked
}

// containsFragment reports whether n or any of its descendants carries the
// fragment class.
func containsFragment(n *html.Node) bool {
	if n.Type == html.ElementNode && hasClass(n, FragmentClass) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if containsFragment(c) {
			return true
		}
	}
	return false
}
