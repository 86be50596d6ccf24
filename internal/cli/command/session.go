package command

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ssmproxy-go/internal/cli/connection"
	"github.com/yndnr/ssmproxy-go/internal/cli/output"
)

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Query the session journal",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List journaled sessions, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "receiver",
						Aliases: []string{"r"},
						Usage:   "Filter by receiver ID",
					},
				},
				Action: sessionListAction,
			},
			{
				Name:      "get",
				Usage:     "Show one journaled session",
				ArgsUsage: "SESSION_ID",
				Action:    sessionGet,
			},
		},
	}
}

func sessionListAction(c *cli.Context) error {
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	path := "/v1/sessions"
	if r := c.String("receiver"); r != "" {
		path += "?" + url.Values{"receiver_id": {r}}.Encode()
	}
	resp, err := inv.client.Get(ctx, path)
	if err != nil {
		return err
	}
	var result sessionList
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	table := output.NewTable("SESSION", "RECEIVER", "GEN", "STATE", "RENEWALS", "LAST EVENT", "UPDATED")
	for _, s := range result.Items {
		table.AddRow(
			output.ShortID(s.SessionID),
			s.ReceiverID,
			strconv.FormatUint(s.Generation, 10),
			string(s.State),
			strconv.Itoa(s.Renewals),
			s.LastEvent,
			output.Time(s.UpdatedAt),
		)
	}
	if err := inv.render(result, table); err != nil {
		return err
	}
	if inv.flags.Output == output.FormatTable {
		fmt.Fprintf(inv.out, "\nTotal: %d sessions\n", result.Total)
	}
	return nil
}

func sessionGet(c *cli.Context) error {
	id, err := requireArg(c, "session ID")
	if err != nil {
		return err
	}
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	resp, err := inv.client.Get(ctx, "/v1/sessions/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	var result sessionRecord
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return inv.render(result, nil)
}
