package minimap

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/minimapd/minimapd/internal/events"
)

// The scroll synchronizer converts pointer input on the preview or region
// into page scroll offsets. Engine-driven scrolls are applied straight to
// the metrics table and re-enter the region sync directly, so the scroll
// events the host reports back never originate from the component's own
// handlers.

// scrollTarget maps a pointer's vertical client coordinate to the page
// scroll offset that would center the region band on it.
func (c *Controller) scrollTarget(clientY float64) float64 {
	m := c.doc.Metrics()
	s := c.scale()
	offsetTop := m.ViewportHeight() * c.cfg.OffsetHeightRatio
	return (clientY - m.OuterHeight(c.region)/2 - offsetTop + m.Top(c.source)*s.Y) / s.Y
}

// applyScroll writes an engine-driven scroll offset and mirrors the region.
// Callers hold c.mu.
func (c *Controller) applyScroll(v float64) {
	c.doc.Metrics().SetScrollTop(v)
	c.syncRegion()
}

func (c *Controller) onMouseDown(e *events.Event) {
	e.StopPropagation()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == dragActive {
		return
	}
	c.drag = dragActive
	c.source.AddClass(ClassNoSelect)
	c.region.AddClass(ClassDragging)
}

func (c *Controller) onMouseMove(e *events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != dragActive {
		return
	}
	e.StopPropagation()
	// Drag-driven syncs yield to an in-flight animation.
	if c.anim != nil {
		return
	}
	c.applyScroll(c.scrollTarget(e.ClientY))
}

func (c *Controller) onMouseUp(e *events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != dragActive {
		return
	}
	e.StopPropagation()
	c.endDrag()
}

// endDrag returns to idle and clears both drag markers. Callers hold c.mu.
func (c *Controller) endDrag() {
	c.drag = dragIdle
	c.source.RemoveClass(ClassNoSelect)
	c.region.RemoveClass(ClassDragging)
}

// onClick always performs a scroll sync and forces drag state back to idle
// regardless of prior state. With smooth scroll enabled the target is
// clamped into the source's outer extent and animated; a click during an
// in-flight animation interrupts it.
func (c *Controller) onClick(e *events.Event) {
	e.StopPropagation()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDrag()

	target := c.scrollTarget(e.ClientY)
	if !c.cfg.SmoothScroll {
		c.applyScroll(target)
		return
	}

	limit := c.doc.Metrics().OuterHeight(c.source)
	target = math.Min(math.Max(target, 0), limit)
	c.startAnimation(target)
}

// animation is one in-flight time-sliced scroll. The step count is fixed up
// front and strictly decremented, so termination is deterministic; the
// direction is fixed at start and not re-evaluated.
type animation struct {
	target   float64
	step     float64
	interval time.Duration
	count    int
	up       bool
	stop     chan struct{}
}

// animParams derives the step size and tick interval from the configured
// delay budget and the distance to cover.
func animParams(delayMS int, distance float64) (step float64, interval time.Duration) {
	r := float64(delayMS) / distance
	switch {
	case r >= 4:
		return 1, time.Millisecond
	case r >= 1:
		return math.Floor(r) * 4, 4 * time.Millisecond
	default:
		return 4 / r, 4 * time.Millisecond
	}
}

// Animating reports whether a smooth scroll is in flight.
func (c *Controller) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anim != nil
}

// startAnimation begins a smooth scroll toward target, interrupting any
// animation already in flight. Callers hold c.mu.
func (c *Controller) startAnimation(target float64) {
	if c.anim != nil {
		close(c.anim.stop)
		c.anim = nil
		c.log.Debug("smooth scroll interrupted", zap.Float64("target", target))
		if c.animInterrupted != nil {
			c.animInterrupted()
		}
	}

	cur := c.doc.Metrics().ScrollTop()
	distance := math.Abs(cur - target)
	step, interval := animParams(c.cfg.SmoothScrollDelay, distance)

	count := 0
	if step > 0 && !math.IsInf(step, 0) && !math.IsNaN(step) {
		count = int(math.Floor(distance / step))
	}

	a := &animation{
		target:   target,
		step:     step,
		interval: interval,
		count:    count,
		up:       target > cur,
		stop:     make(chan struct{}),
	}
	c.anim = a
	if c.animStarted != nil {
		c.animStarted()
	}
	go c.runAnimation(a)
}

func (c *Controller) runAnimation(a *animation) {
	t := time.NewTicker(a.interval)
	defer t.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-t.C:
			if c.animTick(a) {
				return
			}
		}
	}
}

// animTick advances one step; the final tick snaps exactly to the target
// and clears the animation. Returns true when the animation is finished or
// superseded.
func (c *Controller) animTick(a *animation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.anim != a {
		return true
	}
	if a.count <= 0 {
		c.applyScroll(a.target)
		c.anim = nil
		return true
	}
	a.count--
	cur := c.doc.Metrics().ScrollTop()
	if a.up {
		c.applyScroll(cur + a.step)
	} else {
		c.applyScroll(cur - a.step)
	}
	return false
}
