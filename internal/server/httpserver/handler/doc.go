// Package handler implements the ssmproxy HTTP API.
//
//   - receiver.go: receiver load, status, teardown and removal
//   - license.go: license request relay
//   - session.go: session journal queries
//   - health.go: health, readiness and version
//
// Handlers parse the request, call the receiver registry, and write the
// standard JSON envelope. Domain error codes decide the HTTP status.
package handler
