// Package dom provides the in-memory DOM mirror the minimap engine operates on.
//
// A Document is parsed from HTML with automatic charset detection and exposes
// the small capability surface the preview controller needs: subtree cloning,
// marker-class queries, class and inline-style mutation, visibility toggling,
// and markup rewriting. Geometry that only a real layout engine can produce
// (element boxes, viewport size, scroll offset) is mirrored in a Metrics table
// that hosts update from measurement events.
//
// Every mutation is appended to the document's Journal as a patch op so that
// transports can stream incremental updates to a thin client.
package dom
