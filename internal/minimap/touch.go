package minimap

import "github.com/minimapd/minimapd/internal/events"

// The touch adapter promotes single-touch gestures to the mouse handlers.
// Multi-touch events are ignored outright. A touchend that immediately
// follows a touchstart with no intervening phase is a tap and synthesizes a
// click instead of a mouseup.

func (c *Controller) onTouch(e *events.Event) {
	if e.Touches != 1 {
		return
	}

	var synthType events.Type
	switch e.Type {
	case events.TouchStart:
		synthType = events.MouseDown
	case events.TouchMove:
		synthType = events.MouseMove
	case events.TouchEnd:
		if c.lastTouchPhase() == events.TouchStart {
			synthType = events.Click
		} else {
			synthType = events.MouseUp
		}
	default:
		return
	}
	c.setLastTouchPhase(e.Type)

	synth := &events.Event{
		Type:    synthType,
		Target:  e.Target,
		ClientX: e.ClientX,
		ClientY: e.ClientY,
		ScreenX: e.ScreenX,
		ScreenY: e.ScreenY,
	}
	e.PreventDefault()
	// Dispatched at the original touch target, outside the lock: the synth
	// event re-enters this controller's own mouse handlers.
	c.bus.Dispatch(synth)
}

func (c *Controller) lastTouchPhase() events.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTouch
}

func (c *Controller) setLastTouchPhase(t events.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastTouch = t
}
