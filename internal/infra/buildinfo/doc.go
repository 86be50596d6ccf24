// Package buildinfo exposes the version stamped into ssmproxy binaries.
//
//	go build -ldflags "-X github.com/yndnr/ssmproxy-go/internal/infra/buildinfo.Version=v1.2.0"
//
// Commit and build time fall back to the VCS stamp the Go toolchain
// embeds when ldflags do not set them.
package buildinfo
