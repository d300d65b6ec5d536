package minimap

import (
	"strings"
	"unicode"

	"github.com/minimapd/minimapd/internal/dom"
)

// findDecoy is interleaved after visible characters to defeat in-browser
// text search on the preview. A zero-width space is invisible without any
// styling, so the decoy needs no off-screen positioning of its own.
const findDecoy = '\u200b'

// suppressMarkup rewrites markup so every non-tag, non-space character is
// followed by a decoy. Tag spans `<...>` pass through unmodified.
func suppressMarkup(markup string) string {
	var b strings.Builder
	b.Grow(len(markup) * 2)
	inTag := false
	for _, r := range markup {
		b.WriteRune(r)
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case inTag:
		case unicode.IsSpace(r):
		default:
			b.WriteRune(findDecoy)
		}
	}
	return b.String()
}

// suppressNode applies the transform to one element's inner markup. Done
// once, at construction, only for elements flagged for suppression.
func suppressNode(n *dom.Node) error {
	inner, err := n.InnerHTML()
	if err != nil {
		return err
	}
	return n.SetInnerHTML(suppressMarkup(inner))
}
