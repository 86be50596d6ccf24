// Package main provides the entry point for ssmproxy-cli.
//
// ssmproxy-cli drives an ssmproxy server from the command line: it sends
// load requests, relays license challenges, tears sessions down and reads
// the session journal.
//
// Usage:
//
//	ssmproxy-cli [global flags] command [flags] [args]
//	ssmproxy-cli --server http://127.0.0.1:8480 receiver list
//	ssmproxy-cli receiver load --token T --license-uri URL --ssm-uri URL tv-1
//	ssmproxy-cli license request --in challenge.bin --out license.bin tv-1
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/ssmproxy-go/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
