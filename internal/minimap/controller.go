package minimap

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/minimapd/minimapd/internal/dom"
	"github.com/minimapd/minimapd/internal/events"
)

// Marker classes forming the styling contract with the host page.
const (
	ClassPreview  = "minimap-preview"
	ClassRegion   = "minimap-region"
	ClassNoSelect = "minimap-noselect"
	ClassDragging = "minimap-dragging"
	ClassNoFind   = "minimap-nofind"
)

type dragState int

const (
	dragIdle dragState = iota
	dragActive
)

// Controller owns one preview/region pair and all of its event wiring.
type Controller struct {
	mu  sync.Mutex
	doc *dom.Document
	bus *events.Bus
	log *zap.Logger
	cfg Config

	source  *dom.Node
	preview *dom.Node
	region  *dom.Node

	shown     bool
	drag      dragState
	anim      *animation
	lastTouch events.Type

	subs   []events.Subscription
	closed bool

	animStarted     func()
	animInterrupted func()
}

// ControllerOption configures optional collaborators.
type ControllerOption func(*Controller)

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(log *zap.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithAnimationHooks observes smooth-scroll animations starting and being
// interrupted by a newer click.
func WithAnimationHooks(started, interrupted func()) ControllerOption {
	return func(c *Controller) {
		c.animStarted = started
		c.animInterrupted = interrupted
	}
}

// New validates the configuration, clones the source subtree into a preview
// element, creates the region indicator, appends both to the document body
// and wires all event handlers. The configuration is validated before any
// DOM mutation; a failed New leaves the document untouched.
func New(doc *dom.Document, source *dom.Node, cfg Config, opts ...ControllerOption) (*Controller, error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if doc == nil || source == nil {
		return nil, fmt.Errorf("minimap: document and source element required")
	}

	c := &Controller{
		doc: doc,
		bus: events.NewBus(),
		log: zap.NewNop(),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(c)
	}

	// A fresh construction owns the page: previews and regions left over
	// from a prior run are removed wherever they are.
	for _, stale := range doc.Find("." + ClassPreview + ", ." + ClassRegion) {
		stale.Remove()
	}

	c.source = source

	// Clone and prepare the preview element. The clone may itself contain
	// preview artifacts if the source was captured from a page that already
	// ran a minimap; strip them before anything else.
	clone := source.Clone()
	for _, nested := range clone.Find("." + ClassPreview + ", ." + ClassRegion) {
		nested.Detach()
	}
	clone.StripAttrDeep(dom.RefAttr)

	clone.AddClass(ClassPreview)
	clone.AddClass(ClassNoSelect)
	for _, child := range clone.Children() {
		child.SetStyle("pointer-events", "none")
	}

	if cfg.DisableFind {
		for _, child := range clone.Children() {
			child.AddClass(ClassNoFind)
			if err := suppressNode(child); err != nil {
				return nil, fmt.Errorf("minimap: find suppression failed: %w", err)
			}
		}
	}

	region := doc.CreateElement("div")
	region.AddClass(ClassRegion)

	// Region before preview: paint stacking is resolved by the stylesheet,
	// the indicator must never end up behind the preview.
	doc.AppendBody(region)
	doc.AppendBody(clone)

	c.preview = clone
	c.region = region

	// Both start hidden until Show.
	c.preview.Hide()
	c.region.Hide()

	c.wire()
	c.draw() // inert while hidden

	c.log.Debug("minimap constructed",
		zap.String("position", cfg.Position),
		zap.Bool("smooth_scroll", cfg.SmoothScroll))
	return c, nil
}

// Bus returns the dispatcher hosts feed input events into.
func (c *Controller) Bus() *events.Bus { return c.bus }

// Preview returns the preview element.
func (c *Controller) Preview() *dom.Node { return c.preview }

// Region returns the region indicator element.
func (c *Controller) Region() *dom.Node { return c.region }

// Config returns a copy of the live configuration.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// wire registers every handler the configuration asks for.
func (c *Controller) wire() {
	sub := func(scope events.Scope, marker string, t events.Type, h events.Handler) {
		c.subs = append(c.subs, c.bus.Subscribe(scope, marker, t, h))
	}

	sub(events.ScopeWindow, "", events.Resize, c.onResize)
	sub(events.ScopeWindow, "", events.Scroll, c.onScroll)

	if c.cfg.AllowClick {
		for _, marker := range []string{ClassPreview, ClassRegion} {
			sub(events.ScopeElement, marker, events.MouseDown, c.onMouseDown)
			sub(events.ScopeElement, marker, events.Click, c.onClick)
		}
		// Drag continues and ends anywhere in the document.
		sub(events.ScopeDocument, "", events.MouseMove, c.onMouseMove)
		sub(events.ScopeDocument, "", events.MouseUp, c.onMouseUp)
	}

	if c.cfg.Touch {
		sub(events.ScopeDocument, "", events.TouchStart, c.onTouch)
		sub(events.ScopeDocument, "", events.TouchMove, c.onTouch)
		sub(events.ScopeDocument, "", events.TouchEnd, c.onTouch)
	}

	if c.cfg.FadeHover {
		fade := "opacity " + num(c.cfg.HoverFadeSpeed) + "s"
		c.preview.SetStyle("transition", fade)
		c.region.SetStyle("transition", fade)
		for _, marker := range []string{ClassPreview, ClassRegion} {
			sub(events.ScopeElement, marker, events.MouseOver, c.onMouseOver)
			sub(events.ScopeElement, marker, events.MouseOut, c.onMouseOut)
		}
	}
}

// scale computes the current scale factors. It is recomputed on demand and
// never cached: viewport and source dimensions move independently of
// configuration. Zero-sized sources yield Inf/NaN, which is tolerated.
func (c *Controller) scale() Scale {
	m := c.doc.Metrics()
	return Scale{
		X: m.ViewportWidth() / m.Width(c.source) * c.cfg.WidthRatio,
		Y: m.ViewportHeight() / m.Height(c.source) * c.cfg.HeightRatio,
	}
}

// Scale reports the scale the next layout pass would use.
func (c *Controller) Scale() Scale {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale()
}

// draw is the layout pass. Callers hold c.mu.
func (c *Controller) draw() {
	if !c.shown {
		return
	}

	m := c.doc.Metrics()
	s := c.scale()
	vw, vh := m.ViewportWidth(), m.ViewportHeight()
	srcW, srcH := m.Width(c.source), m.Height(c.source)

	offsetTop := vh * c.cfg.OffsetHeightRatio
	offsetEdge := vw * c.cfg.OffsetWidthRatio

	top := srcH*(s.Y-1)/2 + offsetTop
	edge := srcW*(s.X-1)/2 + offsetEdge
	width := vw * (1 / s.X) * c.cfg.WidthRatio
	height := vh * (1 / s.Y) * c.cfg.HeightRatio

	c.preview.SetStyles([][2]string{
		{"position", "fixed"},
		{"top", px(top)},
		{c.cfg.Position, px(edge)},
		{"width", px(width)},
		{"height", px(height)},
		// Margin and padding would perturb the transform origin.
		{"margin", "0"},
		{"padding", "0"},
		{"transform", "scale(" + num(s.X) + ", " + num(s.Y) + ")"},
	})

	regionHeight := vh * s.Y
	regionTop := m.ScrollTop()*s.Y + offsetTop - m.Top(c.source)*s.Y
	c.region.SetStyles([][2]string{
		{"position", "fixed"},
		{"width", px(width)},
		{"height", px(regionHeight)},
		{"top", px(regionTop)},
		{c.cfg.Position, px(offsetEdge)},
	})

	// Mirror the rendered boxes so outer-height math in the synchronizer
	// sees what a host would measure.
	m.SetBox(c.preview, dom.Box{Width: width, Height: height, Top: top})
	m.SetBox(c.region, dom.Box{Width: width, Height: regionHeight, Top: regionTop})

	c.cfg.OnPreviewChange(c.preview, s)
}

// syncRegion is the scroll mirroring pass: it repositions the region for
// the current scroll offset and hides it when the computed band lies
// entirely outside the source's scaled extent. It never scrolls the page.
// Callers hold c.mu.
func (c *Controller) syncRegion() {
	if !c.shown {
		return
	}

	m := c.doc.Metrics()
	s := c.scale()
	vh := m.ViewportHeight()
	offsetTop := vh * c.cfg.OffsetHeightRatio

	top := m.ScrollTop()*s.Y + offsetTop - m.Top(c.source)*s.Y
	regionHeight := vh * s.Y
	extentTop := offsetTop
	extentBottom := offsetTop + m.OuterHeight(c.source)*s.Y

	if top+regionHeight < extentTop || top > extentBottom {
		c.region.Hide()
		return
	}

	c.region.SetStyle("top", px(top))
	c.region.Show()
}

// Event handlers

func (c *Controller) onResize(e *events.Event) {
	if e.ViewportWidth > 0 || e.ViewportHeight > 0 {
		c.doc.Metrics().SetViewport(e.ViewportWidth, e.ViewportHeight)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draw()
}

func (c *Controller) onScroll(e *events.Event) {
	c.doc.Metrics().MirrorScrollTop(e.ScrollTop)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncRegion()
}

func (c *Controller) onMouseOver(e *events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview.SetStyle("opacity", num(c.cfg.HoverOpacity))
	c.region.SetStyle("opacity", num(c.cfg.HoverOpacity))
}

func (c *Controller) onMouseOut(e *events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview.SetStyle("opacity", "1")
	c.region.SetStyle("opacity", "1")
}

// Public control surface

// Shown reports visibility.
func (c *Controller) Shown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shown
}

// Show makes the preview and region visible and runs a layout pass.
// Calling Show on a visible instance is a no-op.
func (c *Controller) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shown {
		return
	}
	c.shown = true
	c.preview.Show()
	c.region.Show()
	c.draw()
}

// Hide makes both elements invisible. Idempotent.
func (c *Controller) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.shown {
		return
	}
	c.shown = false
	c.preview.Hide()
	c.region.Hide()
}

// Toggle flips visibility.
func (c *Controller) Toggle() {
	if c.Shown() {
		c.Hide()
	} else {
		c.Show()
	}
}

// Setters. Each re-validates and, on change, forces a layout pass.

func (c *Controller) SetHeightRatio(v float64) error {
	return c.SetField(FieldHeightRatio, v)
}

func (c *Controller) SetWidthRatio(v float64) error {
	return c.SetField(FieldWidthRatio, v)
}

func (c *Controller) SetOffsetHeightRatio(v float64) error {
	return c.SetField(FieldOffsetHeightRatio, v)
}

func (c *Controller) SetOffsetWidthRatio(v float64) error {
	return c.SetField(FieldOffsetWidthRatio, v)
}

func (c *Controller) SetPosition(v string) error {
	return c.SetField(FieldPosition, v)
}

func (c *Controller) SetSmoothScroll(v bool) error {
	return c.SetField(FieldSmoothScroll, v)
}

func (c *Controller) SetSmoothScrollDelay(v int) error {
	return c.SetField(FieldSmoothScrollDelay, v)
}

// SetField applies one named configuration value through the static
// validator table. Unknown or immutable fields fail with the same
// ConfigError a bad constructor value would produce; nothing changes on a
// failed call.
func (c *Controller) SetField(name string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.cfg
	next := c.cfg
	if err := next.Set(name, value); err != nil {
		return err
	}
	c.cfg = next

	if name == FieldPosition && prev.Position != next.Position {
		// Clear the stale edge offset for the previous side, otherwise
		// both left and right would be set at once.
		c.preview.SetStyle(prev.Position, "")
		c.region.SetStyle(prev.Position, "")
	}

	if redrawFields[name] && prev.fieldValue(name) != next.fieldValue(name) {
		c.draw()
	}
	return nil
}

// Close removes both elements, unsubscribes all handlers and stops any
// in-flight animation. Idempotent; the controller is unusable afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.shown = false
	if c.anim != nil {
		close(c.anim.stop)
		c.anim = nil
	}
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		c.bus.Unsubscribe(s)
	}
	c.preview.Remove()
	c.region.Remove()
}

// formatting helpers

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
