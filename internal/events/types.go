package events

// Type enumerates the raw and synthesized event kinds the engine handles.
type Type string

const (
	Resize  Type = "resize"
	Scroll  Type = "scroll"
	Measure Type = "measure"

	MouseDown Type = "mousedown"
	MouseMove Type = "mousemove"
	MouseUp   Type = "mouseup"
	Click     Type = "click"
	MouseOver Type = "mouseover"
	MouseOut  Type = "mouseout"

	TouchStart Type = "touchstart"
	TouchMove  Type = "touchmove"
	TouchEnd   Type = "touchend"
)

// Event carries one input occurrence. Target is the marker class of the
// element the event happened on; window-level events leave it empty.
type Event struct {
	Type    Type    `json:"type"`
	Target  string  `json:"target,omitempty"`
	ClientX float64 `json:"client_x,omitempty"`
	ClientY float64 `json:"client_y,omitempty"`
	ScreenX float64 `json:"screen_x,omitempty"`
	ScreenY float64 `json:"screen_y,omitempty"`
	// Touches is the number of changed touches on a touch event.
	Touches int `json:"touches,omitempty"`
	// ScrollTop accompanies scroll events reported by the host.
	ScrollTop float64 `json:"scroll_top,omitempty"`
	// Viewport dimensions accompany resize events.
	ViewportWidth  float64 `json:"viewport_width,omitempty"`
	ViewportHeight float64 `json:"viewport_height,omitempty"`

	stopped          bool
	defaultPrevented bool
}

// StopPropagation prevents outer-scope handlers from seeing the event.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool { return e.stopped }

// PreventDefault marks the host default action as suppressed.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether the host default action was suppressed.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }
