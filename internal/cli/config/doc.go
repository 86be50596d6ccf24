// Package config reads and writes the ssmproxy-cli settings file
// (~/.ssmproxy/cli.yaml by default).
//
// Values from the file are defaults only: flags and SSMPROXY_* environment
// variables win.
package config
