// Package middleware provides HTTP middleware for the minimapd API.
//
// Components:
//   - CORS: Cross-origin configuration for browser shell clients
//   - RateLimit: Per-IP token bucket limiting on the REST surface
//
// Event traffic rides the WebSocket and is not rate limited here.
package middleware
