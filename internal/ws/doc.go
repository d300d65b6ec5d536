// Package ws provides WebSocket sessions for live minimap instances.
//
// A session binds one connection to one instance. The client streams host
// input events and measurements in; the engine streams DOM style patches
// and preview-change notifications out, so the host can mirror the
// engine's element state in real time.
//
// Message Types (Client → Server):
//   - event: Host input event (resize, scroll, mouse, touch)
//   - measure: Host-reported element geometry
//   - op: Lifecycle operation (show, hide, toggle)
//   - set: Configuration field update
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - patches: Pending DOM mutations since the last flush
//   - preview_change: A layout pass completed, with its scale
//   - pong: Keep-alive reply
//   - error: Operation failed
//
// Example Usage:
//
//	handler := ws.NewHandler(svc, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
