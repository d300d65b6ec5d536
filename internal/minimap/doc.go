// Package minimap implements the preview controller: a scaled, live-updating
// thumbnail of a page element with a draggable viewport indicator that
// mirrors and controls page scroll position.
//
// The controller owns a cloned preview subtree and a generated region
// element inside a dom.Document, and keeps both geometrically consistent
// with the mirrored viewport and scroll offset under resize, scroll, drag,
// touch and animated-scroll input. It never dispatches the scroll events
// that drive it: engine-driven scrolls go straight to the metrics table and
// re-enter the region sync directly, so there is no feedback loop.
//
// The package has no transport dependencies; the WebSocket and HTTP layers
// drive it through an events.Bus.
package minimap
