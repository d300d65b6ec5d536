// Package config provides 12-factor configuration management for minimapd.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility,
// and an optional YAML overlay file overrides the minimap library's
// documented defaults service-wide.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Fetch: Source page fetching (timeout, retries, body cap)
//   - Minimap: Service-wide minimap defaults overlay
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_MAX_BODY
//   - MINIMAP_DEFAULTS_FILE
package config
