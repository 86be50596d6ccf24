// Package main provides the entry point for ssmproxy-server.
//
// The server relays DRM license traffic for playback receivers and keeps
// one SSM session per receiver in step with the receiver's load requests:
//
//   - HTTP/HTTPS API for load, license and teardown calls
//   - Session journal in memory, Redis or an embedded Badger database
//   - Prometheus metrics on /metrics
//   - Optional Unix socket with admin routes for local operators
//
// Usage:
//
//	ssmproxy-server [flags]
//	ssmproxy-server --config /etc/ssmproxy/server.yaml
//	ssmproxy-server --addr :8480 --log-level debug
//
// Log level and the TLS key pair are reloaded when their files change.
package main
