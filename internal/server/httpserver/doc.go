// Package httpserver serves the ssmproxy HTTP API.
//
// The API itself lives in the handler subpackage. This package adds the
// middleware chain (panic recovery, request IDs, CORS, per-IP rate
// limiting, audit logging, Prometheus request metrics) and the server
// lifecycle, with optional TLS from a reloadable certificate.
package httpserver
