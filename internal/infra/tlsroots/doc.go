// Package tlsroots builds TLS configurations for ssmproxy.
//
// Outbound calls to SSM backends and license servers trust the system
// roots plus an optional CA bundle. The HTTPS listener serves a key pair
// that CertReloader re-reads when the files change on disk.
package tlsroots
