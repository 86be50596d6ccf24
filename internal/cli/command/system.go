package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ssmproxy-go/internal/cli/connection"
	"github.com/yndnr/ssmproxy-go/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server health and version",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check server liveness",
				Action: systemProbe("/health"),
			},
			{
				Name:   "ready",
				Usage:  "Check server readiness (journal reachable)",
				Action: systemProbe("/ready"),
			},
			{
				Name:   "status",
				Usage:  "Show admin status (local socket only)",
				Action: systemProbe("/admin/status"),
			},
			{
				Name:   "reload",
				Usage:  "Reload the server configuration (local socket only)",
				Action: systemReload,
			},
			{
				Name:      "log-level",
				Usage:     "Change the server log level (local socket only)",
				ArgsUsage: "LEVEL",
				Action:    systemLogLevel,
			},
			{
				Name:   "version",
				Usage:  "Show client and server versions",
				Action: systemVersion,
			},
		},
	}
}

func systemProbe(path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		inv, err := newInvocation(c)
		if err != nil {
			return err
		}
		ctx, cancel := inv.context(c)
		defer cancel()

		resp, err := inv.client.Get(ctx, path)
		if err != nil {
			return err
		}
		var result map[string]any
		if err := connection.ParseResponse(resp, &result); err != nil {
			return err
		}
		return inv.render(result, nil)
	}
}

func systemVersion(c *cli.Context) error {
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	versions := map[string]any{"client": buildinfo.Get()}
	resp, err := inv.client.Get(ctx, "/version")
	if err != nil {
		fmt.Fprintf(inv.errOut, "warning: %v\n", err)
	} else {
		var server buildinfo.Info
		if err := connection.ParseResponse(resp, &server); err != nil {
			return err
		}
		versions["server"] = server
	}
	return inv.render(versions, nil)
}

func systemReload(c *cli.Context) error {
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	resp, err := inv.client.Post(ctx, "/admin/reload", nil)
	if err != nil {
		return err
	}
	var result map[string]any
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return inv.render(result, nil)
}

func systemLogLevel(c *cli.Context) error {
	level, err := requireArg(c, "log level")
	if err != nil {
		return err
	}
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	resp, err := inv.client.Put(ctx, "/admin/log-level", map[string]string{"level": level})
	if err != nil {
		return err
	}
	var result map[string]any
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return inv.render(result, nil)
}
