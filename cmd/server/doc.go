// Package main is the entry point for the minimapd server.
//
// minimapd keeps a server-side mirror of a client page's DOM and drives a
// scaled minimap of it: a live preview element with a draggable viewport
// region that both reflects and controls the page's scroll position.
//
// Architecture:
//
//	Host page (browser shell) → REST API  → instance service → DOM mirror
//	                          → WebSocket → event bus → style patch stream
//
// The server provides:
//   - REST API for instance lifecycle and configuration
//   - WebSocket streaming for input events and DOM patches
//   - Prometheus metrics
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Optional YAML overlay for minimap defaults
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
