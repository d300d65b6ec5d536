package dom

import (
	"strconv"
	"sync"

	"golang.org/x/net/html"
)

// Box mirrors the layout box of one element as measured by the host.
// A zero Box is legal: downstream scale math is allowed to produce
// Inf or NaN for zero-sized sources.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Top is the element's offset from the top of the page.
	Top float64 `json:"top"`

	MarginTop     float64 `json:"margin_top"`
	MarginBottom  float64 `json:"margin_bottom"`
	BorderTop     float64 `json:"border_top"`
	BorderBottom  float64 `json:"border_bottom"`
	PaddingTop    float64 `json:"padding_top"`
	PaddingBottom float64 `json:"padding_bottom"`
}

// OuterHeight is the element height including vertical margin, border
// and padding.
func (b Box) OuterHeight() float64 {
	return b.Height + b.MarginTop + b.MarginBottom +
		b.BorderTop + b.BorderBottom + b.PaddingTop + b.PaddingBottom
}

// Metrics mirrors the geometry the host reports: viewport size, scroll
// offset and per-element boxes.
type Metrics struct {
	mu        sync.RWMutex
	viewportW float64
	viewportH float64
	scrollTop float64
	boxes     map[*html.Node]Box
	journal   *Journal
}

func newMetrics(j *Journal) *Metrics {
	return &Metrics{boxes: make(map[*html.Node]Box), journal: j}
}

// SetViewport records the viewport dimensions.
func (m *Metrics) SetViewport(w, h float64) {
	m.mu.Lock()
	m.viewportW, m.viewportH = w, h
	m.mu.Unlock()
}

// ViewportWidth returns the mirrored viewport width.
func (m *Metrics) ViewportWidth() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewportW
}

// ViewportHeight returns the mirrored viewport height.
func (m *Metrics) ViewportHeight() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewportH
}

// ScrollTop returns the mirrored page scroll offset.
func (m *Metrics) ScrollTop() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scrollTop
}

// MirrorScrollTop records a scroll offset reported by the host. It does
// not journal: the host already scrolled.
func (m *Metrics) MirrorScrollTop(v float64) {
	m.mu.Lock()
	m.scrollTop = v
	m.mu.Unlock()
}

// SetScrollTop applies an engine-driven scroll and journals it so the
// host can follow.
func (m *Metrics) SetScrollTop(v float64) {
	m.mu.Lock()
	m.scrollTop = v
	m.mu.Unlock()
	m.journal.record(Patch{Op: OpScroll, Value: strconv.FormatFloat(v, 'f', -1, 64)})
}

// SetBox records the measured box of an element.
func (m *Metrics) SetBox(n *Node, b Box) {
	m.mu.Lock()
	m.boxes[n.n] = b
	m.mu.Unlock()
}

// BoxOf returns the recorded box of an element. Unmeasured elements
// report a zero box.
func (m *Metrics) BoxOf(n *Node) Box {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.boxes[n.n]
}

// Width returns the measured width of an element.
func (m *Metrics) Width(n *Node) float64 { return m.BoxOf(n).Width }

// Height returns the measured height of an element.
func (m *Metrics) Height(n *Node) float64 { return m.BoxOf(n).Height }

// Top returns the element's measured offset from the top of the page.
func (m *Metrics) Top(n *Node) float64 { return m.BoxOf(n).Top }

// OuterHeight returns the measured outer height of an element.
func (m *Metrics) OuterHeight(n *Node) float64 { return m.BoxOf(n).OuterHeight() }
