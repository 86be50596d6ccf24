// Package command defines the ssmproxy-cli commands using urfave/cli/v2:
//
//   - root.go: application, global flags, output plumbing
//   - receiver.go: receiver load, status, list, teardown, remove
//   - license.go: license request relay
//   - session.go: session journal queries
//   - system.go: health, readiness, version and the admin socket commands
//   - config.go: local CLI settings and profiles
package command
