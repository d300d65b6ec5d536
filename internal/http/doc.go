// Package http provides HTTP handlers and routing for the minimapd REST API.
//
// This package implements all HTTP endpoints using the Gin framework,
// including health checks, instance lifecycle, configuration updates, and
// document inspection.
//
// Endpoints:
//   - Health: / and /health
//   - Instances: /instances, /instances/:id
//   - Lifecycle: /instances/:id/show, /instances/:id/hide, /instances/:id/toggle
//   - Config: PATCH /instances/:id/config
//   - Inspection: /instances/:id/snapshot, /instances/:id/patches, /instances/:id/query
//   - Events: POST /instances/:id/events
//
// Example Usage:
//
//	handlers := http.NewHandlers(svc)
//	router.POST("/instances", handlers.CreateInstance)
package http
