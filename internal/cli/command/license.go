package command

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ssmproxy-go/internal/cli/connection"
	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// Headers shared with the server's license relay.
const (
	headerLicenseURL   = "X-License-URL"
	headerRequestKind  = "X-Ssmproxy-Request-Kind"
	headerResponseKind = "X-Ssmproxy-Response-Kind"
)

const maxLicenseBytes = 4 << 20

// LicenseCommand returns the license subcommand group.
func LicenseCommand() *cli.Command {
	return &cli.Command{
		Name:  "license",
		Usage: "Relay license requests through a receiver",
		Subcommands: []*cli.Command{
			{
				Name:      "request",
				Usage:     "Send a license challenge and save the license",
				ArgsUsage: "RECEIVER_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "in",
						Aliases:  []string{"i"},
						Usage:    "Challenge file (- for stdin)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"O"},
						Usage:   "License output file (- for stdout)",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "License server URL; defaults to the receiver's policy",
					},
				},
				Action: licenseRequest,
			},
		},
	}
}

func licenseRequest(c *cli.Context) error {
	id, err := requireArg(c, "receiver ID")
	if err != nil {
		return err
	}

	var challenge []byte
	if in := c.String("in"); in == "-" {
		challenge, err = io.ReadAll(c.App.Reader)
	} else {
		challenge, err = os.ReadFile(in)
	}
	if err != nil {
		return fmt.Errorf("read challenge: %w", err)
	}

	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	h := http.Header{"Content-Type": {domain.ContentTypeOctetStream}}
	if u := c.String("url"); u != "" {
		h.Set(headerLicenseURL, u)
	}
	resp, err := inv.client.PostBytes(ctx, receiverPath(id)+"/license", challenge, h)
	if err != nil {
		return err
	}
	reqKind, respKind := resp.Header.Get(headerRequestKind), resp.Header.Get(headerResponseKind)
	license, err := connection.ReadRaw(resp, maxLicenseBytes)
	if err != nil {
		return err
	}

	switch out := c.String("out"); out {
	case "":
	case "-":
		if _, err := inv.out.Write(license); err != nil {
			return err
		}
	default:
		if err := os.WriteFile(out, license, 0o600); err != nil {
			return fmt.Errorf("write license: %w", err)
		}
	}

	// stdout may carry the license itself.
	fmt.Fprintf(inv.errOut, "license: %d bytes (request %s, response %s)\n", len(license), reqKind, respKind)
	return nil
}
