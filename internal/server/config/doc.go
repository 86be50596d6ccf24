// Package config defines the ssmproxy-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: secret masking for logs
//
// Values are loaded by internal/infra/confloader from defaults, a YAML
// file, SSMPROXY_* environment variables and command-line flags.
package config
