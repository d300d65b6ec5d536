// Package service coordinates instance lifecycle: parsing or fetching the
// source page, building the controller, and routing input events and
// measurements to the right instance.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minimapd/minimapd/internal/config"
	"github.com/minimapd/minimapd/internal/dom"
	"github.com/minimapd/minimapd/internal/events"
	"github.com/minimapd/minimapd/internal/fetch"
	"github.com/minimapd/minimapd/internal/minimap"
	"github.com/minimapd/minimapd/internal/monitoring"
	"github.com/minimapd/minimapd/internal/registry"
)

// Service owns the registry and builds instances from client requests.
type Service struct {
	log      *zap.Logger
	reg      *registry.Registry
	fetcher  *fetch.Fetcher
	metrics  *monitoring.Metrics
	defaults config.MinimapDefaults
}

// New creates the service.
func New(log *zap.Logger, fetcher *fetch.Fetcher, metrics *monitoring.Metrics, defaults config.MinimapDefaults) *Service {
	return &Service{
		log:      log,
		reg:      registry.New(),
		fetcher:  fetcher,
		metrics:  metrics,
		defaults: defaults,
	}
}

// Registry exposes the instance table.
func (s *Service) Registry() *registry.Registry { return s.reg }

// BoxSpec is a host-reported element measurement keyed by CSS selector.
type BoxSpec struct {
	Selector      string  `json:"selector"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Top           float64 `json:"top"`
	MarginTop     float64 `json:"marginTop"`
	MarginBottom  float64 `json:"marginBottom"`
	BorderTop     float64 `json:"borderTop"`
	BorderBottom  float64 `json:"borderBottom"`
	PaddingTop    float64 `json:"paddingTop"`
	PaddingBottom float64 `json:"paddingBottom"`
}

func (b BoxSpec) box() dom.Box {
	return dom.Box{
		Width:         b.Width,
		Height:        b.Height,
		Top:           b.Top,
		MarginTop:     b.MarginTop,
		MarginBottom:  b.MarginBottom,
		BorderTop:     b.BorderTop,
		BorderBottom:  b.BorderBottom,
		PaddingTop:    b.PaddingTop,
		PaddingBottom: b.PaddingBottom,
	}
}

// CreateRequest describes a new instance. Exactly one of HTML or URL must be
// set; Source selects the element to preview.
type CreateRequest struct {
	HTML     string                 `json:"html,omitempty"`
	URL      string                 `json:"url,omitempty"`
	Source   string                 `json:"source"`
	Sanitize bool                   `json:"sanitize,omitempty"`
	Viewport *ViewportSpec          `json:"viewport,omitempty"`
	Boxes    []BoxSpec              `json:"boxes,omitempty"`
	Config   map[string]interface{} `json:"config,omitempty"`
}

// ViewportSpec is the host viewport size at creation time.
type ViewportSpec struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Create parses or fetches the page, builds a controller for the selected
// source element, and registers the instance. A prior instance for the same
// source selector is closed and replaced.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*registry.Instance, error) {
	markup := req.HTML
	switch {
	case markup != "" && req.URL != "":
		return nil, fmt.Errorf("create: html and url are mutually exclusive")
	case markup == "" && req.URL == "":
		return nil, fmt.Errorf("create: html or url is required")
	case req.URL != "":
		page, err := s.fetcher.Page(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		markup = page
	}
	if req.Source == "" {
		return nil, fmt.Errorf("create: source selector is required")
	}

	var opts []dom.Option
	if req.Sanitize {
		opts = append(opts, dom.WithSanitize())
	}
	doc, err := dom.Parse(markup, opts...)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	source := doc.First(req.Source)
	if source == nil {
		return nil, fmt.Errorf("create: no element matches %q", req.Source)
	}

	if req.Viewport != nil {
		doc.Metrics().SetViewport(req.Viewport.Width, req.Viewport.Height)
	}
	for _, spec := range req.Boxes {
		n := doc.First(spec.Selector)
		if n == nil {
			return nil, fmt.Errorf("create: no element matches measured selector %q", spec.Selector)
		}
		doc.Metrics().SetBox(n, spec.box())
	}

	cfg := minimap.DefaultConfig()
	s.applyDefaults(&cfg)
	for name, value := range req.Config {
		if err := cfg.Set(name, value); err != nil {
			return nil, err
		}
	}

	notices := make(chan minimap.Scale, 16)
	cfg.OnPreviewChange = func(_ *dom.Node, sc minimap.Scale) {
		s.metrics.LayoutPasses.Inc()
		select {
		case notices <- sc:
		default:
		}
	}

	ctrl, err := minimap.New(doc, source, cfg,
		minimap.WithLogger(s.log),
		minimap.WithAnimationHooks(s.metrics.AnimationsStarted.Inc, s.metrics.AnimationsInterrupted.Inc))
	if err != nil {
		return nil, err
	}

	inst := s.reg.Open(req.Source, ctrl, doc)
	inst.Notices = notices

	s.metrics.InstancesTotal.Inc()
	s.metrics.InstancesActive.Set(float64(s.reg.Len()))
	s.log.Info("instance created",
		zap.String("id", inst.ID),
		zap.String("source", req.Source),
		zap.Bool("fetched", req.URL != ""))
	return inst, nil
}

// applyDefaults overlays the service-wide minimap defaults onto the
// documented library defaults. Requests can still override per field.
func (s *Service) applyDefaults(cfg *minimap.Config) {
	d := s.defaults
	if d.HeightRatio != nil {
		cfg.HeightRatio = *d.HeightRatio
	}
	if d.WidthRatio != nil {
		cfg.WidthRatio = *d.WidthRatio
	}
	if d.OffsetHeightRatio != nil {
		cfg.OffsetHeightRatio = *d.OffsetHeightRatio
	}
	if d.OffsetWidthRatio != nil {
		cfg.OffsetWidthRatio = *d.OffsetWidthRatio
	}
	if d.Position != nil {
		cfg.Position = *d.Position
	}
	if d.SmoothScroll != nil {
		cfg.SmoothScroll = *d.SmoothScroll
	}
	if d.SmoothScrollDelay != nil {
		cfg.SmoothScrollDelay = *d.SmoothScrollDelay
	}
	if d.DisableFind != nil {
		cfg.DisableFind = *d.DisableFind
	}
	if d.Touch != nil {
		cfg.Touch = *d.Touch
	}
	if d.AllowClick != nil {
		cfg.AllowClick = *d.AllowClick
	}
}

// Dispatch routes a host input event to an instance's bus.
func (s *Service) Dispatch(inst *registry.Instance, ev *events.Event) {
	s.metrics.EventsDispatched.WithLabelValues(string(ev.Type)).Inc()
	if ev.Type == events.Scroll {
		s.metrics.ScrollSyncs.Inc()
	}
	inst.Controller.Bus().Dispatch(ev)
}

// Measure records a host-reported element box and replays a resize so the
// new geometry takes effect on the next layout pass.
func (s *Service) Measure(inst *registry.Instance, spec BoxSpec) error {
	n := inst.Document.First(spec.Selector)
	if n == nil {
		return fmt.Errorf("measure: no element matches %q", spec.Selector)
	}
	inst.Document.Metrics().SetBox(n, spec.box())
	return nil
}

// Op applies a named lifecycle operation to an instance.
func (s *Service) Op(inst *registry.Instance, op string) error {
	switch op {
	case "show":
		inst.Controller.Show()
	case "hide":
		inst.Controller.Hide()
	case "toggle":
		inst.Controller.Toggle()
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
	return nil
}

// Set applies one configuration field to an instance's controller.
func (s *Service) Set(inst *registry.Instance, field string, value interface{}) error {
	return inst.Controller.SetField(field, value)
}

// Close tears down an instance and updates gauges.
func (s *Service) Close(id string) error {
	if err := s.reg.Close(id); err != nil {
		return err
	}
	s.metrics.InstancesActive.Set(float64(s.reg.Len()))
	s.log.Info("instance closed", zap.String("id", id))
	return nil
}

// Shutdown closes every live instance.
func (s *Service) Shutdown() {
	for _, inst := range s.reg.List() {
		inst.Controller.Close()
	}
	s.metrics.InstancesActive.Set(0)
}
