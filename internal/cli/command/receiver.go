package command

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ssmproxy-go/internal/cli/connection"
	"github.com/yndnr/ssmproxy-go/internal/cli/output"
	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// ReceiverCommand returns the receiver subcommand group.
func ReceiverCommand() *cli.Command {
	return &cli.Command{
		Name:    "receiver",
		Aliases: []string{"recv"},
		Usage:   "Manage receivers and their SSM sessions",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List receivers",
				Action: runReceiverList,
			},
			{
				Name:      "status",
				Aliases:   []string{"get"},
				Usage:     "Show a receiver and its current session",
				ArgsUsage: "RECEIVER_ID",
				Action:    runReceiverStatus,
			},
			{
				Name:      "load",
				Usage:     "Send a load request; without RECEIVER_ID a new receiver is created",
				ArgsUsage: "[RECEIVER_ID]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Load request JSON file (- for stdin)",
					},
					&cli.StringFlag{Name: "content-id", Usage: "Media content ID"},
					&cli.StringFlag{Name: "token", Usage: "Playback token (customData.token)"},
					&cli.StringFlag{Name: "license-uri", Usage: "License server URL (customData.widevineLicenceUri)"},
					&cli.StringFlag{Name: "ssm-uri", Usage: "SSM base URL (customData.ssmUri)"},
				},
				Action: receiverLoad,
			},
			{
				Name:      "teardown",
				Usage:     "Tear down the receiver's SSM session",
				ArgsUsage: "RECEIVER_ID",
				Action:    receiverTeardown,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Tear down and forget a receiver",
				ArgsUsage: "RECEIVER_ID",
				Action:    receiverRemove,
			},
		},
	}
}

func receiverPath(id string) string {
	return "/v1/receivers/" + url.PathEscape(id)
}

func runReceiverList(c *cli.Context) error {
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	resp, err := inv.client.Get(ctx, "/v1/receivers")
	if err != nil {
		return err
	}
	var result receiverList
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	table := output.NewTable("RECEIVER", "GEN", "PROTECTION", "SESSION", "STATE", "RENEWALS")
	for _, r := range result.Items {
		sessID, state, renewals := "", "", ""
		if r.Session != nil {
			sessID, state = output.ShortID(r.Session.ID), string(r.Session.State)
			renewals = strconv.Itoa(r.Session.Renewals)
		}
		table.AddRow(r.ReceiverID, strconv.FormatUint(r.Generation, 10), string(r.Policy.Protection), sessID, state, renewals)
	}
	if err := inv.render(result, table); err != nil {
		return err
	}
	if inv.flags.Output == output.FormatTable {
		fmt.Fprintf(inv.out, "\nTotal: %d receivers\n", result.Total)
	}
	return nil
}

func runReceiverStatus(c *cli.Context) error {
	id, err := requireArg(c, "receiver ID")
	if err != nil {
		return err
	}
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	resp, err := inv.client.Get(ctx, receiverPath(id))
	if err != nil {
		return err
	}
	var result receiverStatus
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return inv.render(result, nil)
}

// buildLoadRequest reads --file or assembles a request from flags. Flags
// override values in the file.
func buildLoadRequest(c *cli.Context) (*domain.LoadRequest, error) {
	req := &domain.LoadRequest{}
	if path := c.String("file"); path != "" {
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(c.App.Reader)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("read load request: %w", err)
		}
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("parse load request: %w", err)
		}
	}
	if req.Media == nil {
		req.Media = &domain.MediaInfo{}
	}
	if v := c.String("content-id"); v != "" {
		req.Media.ContentID = v
	}
	for flag, key := range map[string]string{
		"token":       domain.CustomDataToken,
		"license-uri": domain.CustomDataLicenseURI,
		"ssm-uri":     domain.CustomDataSSMURI,
	} {
		if v := c.String(flag); v != "" {
			if req.Media.CustomData == nil {
				req.Media.CustomData = make(map[string]any)
			}
			req.Media.CustomData[key] = v
		}
	}
	return req, nil
}

func receiverLoad(c *cli.Context) error {
	req, err := buildLoadRequest(c)
	if err != nil {
		return err
	}
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	path := "/v1/receivers"
	if id := c.Args().First(); id != "" {
		path = receiverPath(id) + "/load"
	}
	resp, err := inv.client.Post(ctx, path, req)
	if err != nil {
		return err
	}
	var result loadResponse
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	if result.SetupError != nil {
		fmt.Fprintf(inv.errOut, "warning: ssm setup failed: [%s] %s\n", result.SetupError.Code, result.SetupError.Message)
	}
	return inv.render(result, nil)
}

func receiverTeardown(c *cli.Context) error {
	id, err := requireArg(c, "receiver ID")
	if err != nil {
		return err
	}
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	resp, err := inv.client.Post(ctx, receiverPath(id)+"/teardown", nil)
	if err != nil {
		return err
	}
	var result teardownResponse
	if err := connection.ParseResponse(resp, &result); err != nil {
		if connection.IsCode(err, domain.ErrTeardownOnEmptySession.Code) {
			fmt.Fprintf(inv.out, "receiver %s has no session to tear down\n", id)
			return nil
		}
		return err
	}
	return inv.render(result, nil)
}

func receiverRemove(c *cli.Context) error {
	id, err := requireArg(c, "receiver ID")
	if err != nil {
		return err
	}
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx, cancel := inv.context(c)
	defer cancel()

	resp, err := inv.client.Delete(ctx, receiverPath(id))
	if err != nil {
		return err
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}
	fmt.Fprintf(inv.out, "receiver %s removed\n", id)
	return nil
}
