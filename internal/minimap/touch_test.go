package minimap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimapd/minimapd/internal/events"
)

func touchEvent(t events.Type, target string, clientY float64, touches int) *events.Event {
	return &events.Event{Type: t, Target: target, ClientY: clientY, Touches: touches}
}

func TestTapSynthesizesClick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmoothScroll = false

	doc, c := newTestController(t, cfg)
	c.Show()

	start := touchEvent(events.TouchStart, ClassRegion, 100, 1)
	c.Bus().Dispatch(start)
	assert.True(t, start.DefaultPrevented())
	// The synthesized mousedown started a drag.
	assert.True(t, c.Region().HasClass(ClassDragging))

	end := touchEvent(events.TouchEnd, ClassRegion, 100, 1)
	c.Bus().Dispatch(end)
	assert.True(t, end.DefaultPrevented())

	// touchend straight after touchstart is a tap: it clicks and the click
	// path resets the drag.
	assert.InDelta(t, 800, doc.Metrics().ScrollTop(), 1e-6)
	assert.False(t, c.Region().HasClass(ClassDragging))
}

func TestTouchDragSequence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmoothScroll = false

	doc, c := newTestController(t, cfg)
	c.Show()

	c.Bus().Dispatch(touchEvent(events.TouchStart, ClassRegion, 50, 1))
	require.True(t, c.Region().HasClass(ClassDragging))

	c.Bus().Dispatch(touchEvent(events.TouchMove, "", 100, 1))
	assert.InDelta(t, 800, doc.Metrics().ScrollTop(), 1e-6)

	// touchend after a move is a mouseup, not a click: the scroll offset
	// stays where the move left it.
	c.Bus().Dispatch(touchEvent(events.TouchEnd, "", 300, 1))
	assert.InDelta(t, 800, doc.Metrics().ScrollTop(), 1e-6)
	assert.False(t, c.Region().HasClass(ClassDragging))
}

func TestMultiTouchIgnored(t *testing.T) {
	doc, c := newTestController(t, DefaultConfig())
	c.Show()

	pinch := touchEvent(events.TouchStart, ClassRegion, 100, 2)
	c.Bus().Dispatch(pinch)

	assert.False(t, pinch.DefaultPrevented())
	assert.False(t, c.Region().HasClass(ClassDragging))
	assert.Equal(t, 0.0, doc.Metrics().ScrollTop())
}

func TestTouchDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Touch = false

	_, c := newTestController(t, cfg)
	c.Show()

	tap := touchEvent(events.TouchStart, ClassRegion, 100, 1)
	c.Bus().Dispatch(tap)
	assert.False(t, tap.DefaultPrevented())
	assert.False(t, c.Region().HasClass(ClassDragging))
}
