package dom

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node wraps a single element of a Document's tree.
type Node struct {
	d *Document
	n *html.Node
}

// Raw exposes the underlying html.Node. Callers should treat it as read-only;
// mutations must go through Node methods so the journal stays consistent.
func (n *Node) Raw() *html.Node { return n.n }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.d }

// Clone produces a deep, detached copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	return &Node{d: n.d, n: cloneTree(n.n)}
}

func cloneTree(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(cloneTree(ch))
	}
	return c
}

// Remove detaches the node from its parent.
func (n *Node) Remove() {
	if n.n.Parent == nil {
		return
	}
	ref := n.d.ref(n)
	n.n.Parent.RemoveChild(n.n)
	n.d.journal.record(Patch{Op: OpRemove, Target: ref})
}

// Detach removes the node from its parent without journaling. Intended for
// pruning inside detached subtrees, where clients never saw the nodes.
func (n *Node) Detach() {
	if n.n.Parent != nil {
		n.n.Parent.RemoveChild(n.n)
	}
}

// StripAttrDeep removes an attribute from the whole subtree without
// journaling. Used to scrub journal identities off freshly cloned trees.
func (n *Node) StripAttrDeep(key string) {
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for i, a := range node.Attr {
			if a.Key == key {
				node.Attr = append(node.Attr[:i], node.Attr[i+1:]...)
				break
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n.n)
}

// Children returns the immediate element children of n.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Node{d: n.d, n: c})
		}
	}
	return out
}

// Find returns descendants of n matching a CSS selector.
func (n *Node) Find(selector string) []*Node {
	return n.d.wrap(goquery.NewDocumentFromNode(n.n).Find(selector).Nodes)
}

// Tag returns the element tag name.
func (n *Node) Tag() string { return n.n.Data }

// Attr returns an attribute value, or "" when absent.
func (n *Node) Attr(key string) string {
	for _, a := range n.n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets an attribute and journals the change.
func (n *Node) SetAttr(key, val string) {
	n.setAttr(key, val)
	n.d.journal.record(Patch{Op: OpAttr, Target: n.d.ref(n), Key: key, Value: val})
}

func (n *Node) setAttr(key, val string) {
	for i, a := range n.n.Attr {
		if a.Key == key {
			n.n.Attr[i].Val = val
			return
		}
	}
	n.n.Attr = append(n.n.Attr, html.Attribute{Key: key, Val: val})
}

// Text returns the concatenated text content of the subtree.
func (n *Node) Text() string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n.n)
	return buf.String()
}

// Class handling

// HasClass reports whether n carries the given class.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds a class to n if not already present.
func (n *Node) AddClass(class string) {
	if n.HasClass(class) {
		return
	}
	existing := n.Attr("class")
	if existing == "" {
		n.setAttr("class", class)
	} else {
		n.setAttr("class", existing+" "+class)
	}
	n.d.journal.record(Patch{Op: OpClassAdd, Target: n.d.ref(n), Value: class})
}

// RemoveClass removes a class from n.
func (n *Node) RemoveClass(class string) {
	if !n.HasClass(class) {
		return
	}
	fields := strings.Fields(n.Attr("class"))
	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	n.setAttr("class", strings.Join(kept, " "))
	n.d.journal.record(Patch{Op: OpClassRemove, Target: n.d.ref(n), Value: class})
}

// Inline style handling. Declarations keep their written order so serialized
// markup stays deterministic.

type styleDecl struct {
	prop string
	val  string
}

func parseStyle(s string) []styleDecl {
	var decls []styleDecl
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.Index(part, ":")
		if idx < 0 {
			continue
		}
		decls = append(decls, styleDecl{
			prop: strings.TrimSpace(part[:idx]),
			val:  strings.TrimSpace(part[idx+1:]),
		})
	}
	return decls
}

func serializeStyle(decls []styleDecl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.val)
	}
	return strings.Join(parts, "; ")
}

// Style returns the value of an inline style property, or "" when unset.
func (n *Node) Style(prop string) string {
	for _, d := range parseStyle(n.Attr("style")) {
		if d.prop == prop {
			return d.val
		}
	}
	return ""
}

// SetStyle sets one inline style property. An empty value removes the
// property entirely, which is how stale edge offsets are cleared.
func (n *Node) SetStyle(prop, val string) {
	decls := parseStyle(n.Attr("style"))
	if val == "" {
		kept := decls[:0]
		for _, d := range decls {
			if d.prop != prop {
				kept = append(kept, d)
			}
		}
		decls = kept
	} else {
		found := false
		for i, d := range decls {
			if d.prop == prop {
				decls[i].val = val
				found = true
				break
			}
		}
		if !found {
			decls = append(decls, styleDecl{prop: prop, val: val})
		}
	}
	n.setAttr("style", serializeStyle(decls))
	n.d.journal.record(Patch{Op: OpStyle, Target: n.d.ref(n), Key: prop, Value: val})
}

// SetStyles bulk-assigns style properties in order.
func (n *Node) SetStyles(pairs [][2]string) {
	for _, p := range pairs {
		n.SetStyle(p[0], p[1])
	}
}

// Visibility

// Visible reports whether the node is not display:none.
func (n *Node) Visible() bool {
	return n.Style("display") != "none"
}

// Show makes the node visible by clearing display:none.
func (n *Node) Show() {
	if n.Style("display") == "none" {
		n.SetStyle("display", "")
	}
}

// Hide makes the node invisible.
func (n *Node) Hide() {
	if n.Style("display") != "none" {
		n.SetStyle("display", "none")
	}
}

// ToggleVisible flips visibility.
func (n *Node) ToggleVisible() {
	if n.Visible() {
		n.Hide()
	} else {
		n.Show()
	}
}

// Markup

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() (string, error) {
	var buf bytes.Buffer
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render failed: %w", err)
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the children of n with parsed markup.
func (n *Node) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n.n)
	if err != nil {
		return fmt.Errorf("fragment parse failed: %w", err)
	}
	for c := n.n.FirstChild; c != nil; {
		next := c.NextSibling
		n.n.RemoveChild(c)
		c = next
	}
	for _, c := range nodes {
		n.n.AppendChild(c)
	}
	n.d.journal.record(Patch{Op: OpSetHTML, Target: n.d.ref(n), Value: markup})
	return nil
}
