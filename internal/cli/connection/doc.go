// Package connection is the HTTP client ssmproxy-cli uses to reach a
// server.
//
// Every JSON answer from the server is wrapped in a response envelope;
// ParseResponse unwraps it and turns error envelopes into *APIError.
//
// A server address of the form unix:///path/to/socket dials the server's
// local admin socket instead of TCP.
package connection
