package minimap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimapd/minimapd/internal/events"
)

func TestAnimParams(t *testing.T) {
	tests := []struct {
		name         string
		delayMS      int
		distance     float64
		wantStep     float64
		wantInterval time.Duration
	}{
		{"generous budget", 200, 10, 1, time.Millisecond},
		{"ratio exactly four", 200, 50, 1, time.Millisecond},
		{"ratio two", 200, 100, 8, 4 * time.Millisecond},
		{"ratio exactly one", 200, 200, 4, 4 * time.Millisecond},
		{"long distance", 200, 1000, 20, 4 * time.Millisecond},
		{"tight budget", 4, 1000, 1000, 4 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, interval := animParams(tt.delayMS, tt.distance)
			assert.InDelta(t, tt.wantStep, step, 1e-9)
			assert.Equal(t, tt.wantInterval, interval)
		})
	}
}

func TestScrollTarget(t *testing.T) {
	_, c := newTestController(t, DefaultConfig())
	c.Show()

	// target = (clientY - regionOuterHeight/2 - offsetTop + srcTop*sY) / sY
	//        = (100 - 24 - 28 + 0) / 0.06 = 800
	assert.InDelta(t, 800, c.scrollTarget(100), 1e-6)
}

func TestClickScrollsImmediately(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmoothScroll = false

	doc, c := newTestController(t, cfg)
	c.Show()
	doc.Journal().Drain()

	c.Bus().Dispatch(&events.Event{Type: events.Click, Target: ClassRegion, ClientY: 100})

	assert.InDelta(t, 800, doc.Metrics().ScrollTop(), 1e-6)
	assert.False(t, c.Animating())

	// Engine-driven scrolls journal so the host can follow.
	var ops []string
	for _, p := range doc.Journal().Drain() {
		ops = append(ops, p.Op)
	}
	assert.Contains(t, ops, "scroll")
}

func TestClickSmoothScrollReachesTargetExactly(t *testing.T) {
	doc, c := newTestController(t, DefaultConfig())
	c.Show()

	c.Bus().Dispatch(&events.Event{Type: events.Click, Target: ClassRegion, ClientY: 100})
	require.True(t, c.Animating())

	// The final tick snaps exactly to the target, never past it.
	require.Eventually(t, func() bool { return !c.Animating() }, 5*time.Second, 5*time.Millisecond)
	assert.InDelta(t, 800, doc.Metrics().ScrollTop(), 1e-6)
}

func TestClickInterruptsInFlightAnimation(t *testing.T) {
	doc, c := newTestController(t, DefaultConfig())
	c.Show()

	// First click heads far down the page.
	c.Bus().Dispatch(&events.Event{Type: events.Click, Target: ClassRegion, ClientY: 500})
	require.True(t, c.Animating())

	// Second click retargets; the first animation must die.
	c.Bus().Dispatch(&events.Event{Type: events.Click, Target: ClassRegion, ClientY: 100})

	require.Eventually(t, func() bool { return !c.Animating() }, 5*time.Second, 5*time.Millisecond)
	assert.InDelta(t, 800, doc.Metrics().ScrollTop(), 1e-6)
}

func TestSmoothScrollClampsTarget(t *testing.T) {
	doc, c := newTestController(t, DefaultConfig())
	c.Show()

	// A click above the band would compute a negative target; the smooth
	// path clamps it to the top of the source.
	c.Bus().Dispatch(&events.Event{Type: events.Click, Target: ClassRegion, ClientY: 0})

	require.Eventually(t, func() bool { return !c.Animating() }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0.0, doc.Metrics().ScrollTop())
}

func TestDragStateMachine(t *testing.T) {
	doc, c := newTestController(t, DefaultConfig())
	c.Show()
	src := doc.First("#main")

	// Moves before any mousedown are ignored.
	c.Bus().Dispatch(&events.Event{Type: events.MouseMove, ClientY: 100})
	assert.Equal(t, 0.0, doc.Metrics().ScrollTop())

	down := &events.Event{Type: events.MouseDown, Target: ClassRegion, ClientY: 50}
	c.Bus().Dispatch(down)
	assert.True(t, down.Stopped())
	assert.True(t, c.Region().HasClass(ClassDragging))
	assert.True(t, src.HasClass(ClassNoSelect))

	c.Bus().Dispatch(&events.Event{Type: events.MouseMove, ClientY: 100})
	assert.InDelta(t, 800, doc.Metrics().ScrollTop(), 1e-6)

	c.Bus().Dispatch(&events.Event{Type: events.MouseUp})
	assert.False(t, c.Region().HasClass(ClassDragging))
	assert.False(t, src.HasClass(ClassNoSelect))

	// Drag over: moves are inert again.
	c.Bus().Dispatch(&events.Event{Type: events.MouseMove, ClientY: 200})
	assert.InDelta(t, 800, doc.Metrics().ScrollTop(), 1e-6)
}

func TestDragYieldsToAnimation(t *testing.T) {
	doc, c := newTestController(t, DefaultConfig())
	c.Show()

	// Kick off a long smooth scroll, then start dragging.
	c.Bus().Dispatch(&events.Event{Type: events.Click, Target: ClassRegion, ClientY: 500})
	require.True(t, c.Animating())

	c.Bus().Dispatch(&events.Event{Type: events.MouseDown, Target: ClassRegion, ClientY: 50})
	c.Bus().Dispatch(&events.Event{Type: events.MouseMove, ClientY: 100})

	// The move did not retarget the scroll; the animation still runs to the
	// original target.
	require.Eventually(t, func() bool { return !c.Animating() }, 5*time.Second, 5*time.Millisecond)
	target := c.scrollTarget(500)
	assert.InDelta(t, target, doc.Metrics().ScrollTop(), 1e-6)
}

func TestClickDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowClick = false

	doc, c := newTestController(t, cfg)
	c.Show()

	c.Bus().Dispatch(&events.Event{Type: events.Click, Target: ClassRegion, ClientY: 100})
	assert.Equal(t, 0.0, doc.Metrics().ScrollTop())

	c.Bus().Dispatch(&events.Event{Type: events.MouseDown, Target: ClassRegion, ClientY: 50})
	assert.False(t, c.Region().HasClass(ClassDragging))
}
