// Package localserver serves the API on a Unix domain socket for local
// operators.
//
// The socket is created with mode 0600, so file system permissions decide
// who may connect. Besides the regular API it answers a few admin routes
// that are never exposed on the TCP listener:
//
//   - GET /admin/status: uptime, log level and live counts
//   - POST /admin/reload: re-read the configuration file
//   - PUT /admin/log-level: change the log level until the next reload
package localserver
