package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ssmproxy-go/internal/cli/config"
	"github.com/yndnr/ssmproxy-go/internal/cli/connection"
	"github.com/yndnr/ssmproxy-go/internal/cli/output"
	"github.com/yndnr/ssmproxy-go/internal/infra/buildinfo"
)

const (
	program       = "ssmproxy-cli"
	metaCLIConfig = "cliConfig"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    program,
		Usage:   "Operate an ssmproxy server",
		Version: buildinfo.Get().Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ReceiverCommand(),
			LicenseCommand(),
			SessionCommand(),
			SystemCommand(),
			ConfigCommand(),
		},
		Metadata: map[string]any{},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			c.App.Metadata[metaCLIConfig] = cfg
			return nil
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI settings file",
			EnvVars: []string{"SSMPROXY_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "ssmproxy server address (e.g., http://127.0.0.1:8480)",
			EnvVars: []string{"SSMPROXY_SERVER"},
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Saved server profile",
			EnvVars: []string{"SSMPROXY_PROFILE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
		},
	}
}

// GlobalFlags are the resolved global settings of one invocation.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Timeout time.Duration
}

// ParseGlobalFlags merges flags over the CLI settings file.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)

	server, timeout, ok := cfg.Resolve(c.String("profile"))
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", c.String("profile"))
	}
	if c.IsSet("server") {
		server = c.String("server")
	}
	if c.IsSet("timeout") {
		timeout = c.Duration("timeout")
	}
	if timeout <= 0 {
		timeout = connection.DefaultTimeout
	}

	format := cfg.Output
	if c.IsSet("output") {
		format = c.String("output")
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &GlobalFlags{Server: server, Output: f, Timeout: timeout}, nil
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaCLIConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// invocation bundles what a command action needs.
type invocation struct {
	flags  *GlobalFlags
	client *connection.HTTPClient
	out    io.Writer
	errOut io.Writer
}

func newInvocation(c *cli.Context) (*invocation, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, err
	}
	return &invocation{
		flags:  flags,
		client: connection.NewHTTPClient(flags.Server, flags.Timeout),
		out:    c.App.Writer,
		errOut: c.App.ErrWriter,
	}, nil
}

func (inv *invocation) context(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, inv.flags.Timeout)
}

// render writes data in the selected format. table is used for the table
// format when non-nil.
func (inv *invocation) render(data any, table *output.Table) error {
	if inv.flags.Output == output.FormatTable && table != nil {
		return table.Render(inv.out)
	}
	return output.NewFormatter(inv.flags.Output).Format(inv.out, data)
}

func requireArg(c *cli.Context, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", fmt.Errorf("%s required", name)
	}
	return v, nil
}
