package dom

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

const (
	// MaxMarkupSize limits ingested HTML to 10MB to prevent memory exhaustion
	MaxMarkupSize = 10 * 1024 * 1024
)

// Document is a parsed HTML mirror with geometry metrics and a patch journal.
type Document struct {
	mu      sync.Mutex
	root    *html.Node
	gq      *goquery.Document
	metrics *Metrics
	journal *Journal
	refSeq  int
}

type parseOpts struct {
	sanitize bool
}

// Option configures parsing.
type Option func(*parseOpts)

// WithSanitize runs ingested markup through a UGC sanitization policy
// before parsing.
func WithSanitize() Option {
	return func(o *parseOpts) { o.sanitize = true }
}

// Parse loads HTML with automatic charset detection.
func Parse(markup string, opts ...Option) (*Document, error) {
	if markup == "" {
		return nil, fmt.Errorf("markup required")
	}
	if len(markup) > MaxMarkupSize {
		return nil, fmt.Errorf("markup exceeds maximum size of %d bytes", MaxMarkupSize)
	}

	var o parseOpts
	for _, opt := range opts {
		opt(&o)
	}
	if o.sanitize {
		markup = bluemonday.UGCPolicy().Sanitize(markup)
	}

	data := []byte(markup)
	reader := bytes.NewReader(data)
	utf8Reader, err := charset.NewReader(reader, detectCharset(data))
	if err != nil {
		// Fallback to direct parsing
		utf8Reader = strings.NewReader(markup)
	}

	root, err := html.Parse(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}

	journal := &Journal{}
	return &Document{
		root:    root,
		gq:      goquery.NewDocumentFromNode(root),
		metrics: newMetrics(journal),
		journal: journal,
	}, nil
}

// detectCharset detects the charset of raw HTML bytes, defaulting to utf-8.
func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// Metrics returns the document's geometry table.
func (d *Document) Metrics() *Metrics { return d.metrics }

// Journal returns the document's mutation journal.
func (d *Document) Journal() *Journal { return d.journal }

// Body returns the document body element, or nil if the tree has none.
func (d *Document) Body() *Node {
	n := findFirstElement(d.root, atom.Body)
	if n == nil {
		return nil
	}
	return &Node{d: d, n: n}
}

// Find returns all descendants of the document matching a CSS selector.
func (d *Document) Find(selector string) []*Node {
	return d.wrap(d.gq.Find(selector).Nodes)
}

// First returns the first match for a CSS selector, or nil.
func (d *Document) First(selector string) *Node {
	nodes := d.Find(selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// XPath returns all nodes matching an XPath expression.
func (d *Document) XPath(expr string) ([]*Node, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	return d.wrap(nodes), nil
}

// CreateElement creates a detached element node.
func (d *Document) CreateElement(tag string) *Node {
	a := atom.Lookup([]byte(tag))
	return &Node{d: d, n: &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     tag,
	}}
}

// AppendBody appends a node to the document body.
func (d *Document) AppendBody(n *Node) {
	body := d.Body()
	if body == nil {
		return
	}
	if n.n.Parent != nil {
		n.n.Parent.RemoveChild(n.n)
	}
	body.n.AppendChild(n.n)
	d.journal.record(Patch{Op: OpAppendBody, Target: d.ref(n)})
}

// Render serializes the full document back to HTML.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("render failed: %w", err)
	}
	return buf.String(), nil
}

// ref returns a stable journal reference for a node, assigning one on demand.
func (d *Document) ref(n *Node) string {
	if id := n.Attr("id"); id != "" {
		return "#" + id
	}
	if id := n.Attr(refAttr); id != "" {
		return id
	}
	d.mu.Lock()
	d.refSeq++
	id := "mm-" + strconv.Itoa(d.refSeq)
	d.mu.Unlock()
	n.setAttr(refAttr, id)
	return id
}

// RefAttr carries the synthetic node identity used by the patch journal.
const RefAttr = "data-mm-ref"

const refAttr = RefAttr

func (d *Document) wrap(nodes []*html.Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Node{d: d, n: n})
	}
	return out
}

func findFirstElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirstElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
