package command

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ssmproxy-go/internal/cli/config"
	"github.com/yndnr/ssmproxy-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group. It only touches the
// local settings file.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local CLI settings",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the CLI settings and profiles",
				Action: configShow,
			},
			{
				Name:      "set-profile",
				Usage:     "Add or update a server profile",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "Server address", Required: true},
					&cli.DurationFlag{Name: "request-timeout", Usage: "Request timeout for this profile"},
				},
				Action: configSetProfile,
			},
			{
				Name:      "use",
				Usage:     "Select the default profile (empty to clear)",
				ArgsUsage: "[NAME]",
				Action:    configUse,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := cliConfig(c)
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format).Format(c.App.Writer, cfg)
	}

	fmt.Fprintf(c.App.Writer, "file:    %s\n", c.String("config"))
	fmt.Fprintf(c.App.Writer, "server:  %s\n", cfg.Server)
	fmt.Fprintf(c.App.Writer, "output:  %s\n", cfg.Output)
	fmt.Fprintf(c.App.Writer, "timeout: %s\n\n", cfg.Timeout)

	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	table := output.NewTable("PROFILE", "SERVER", "TIMEOUT", "CURRENT")
	for _, name := range names {
		p := cfg.Profiles[name]
		timeout, current := "", ""
		if p.Timeout > 0 {
			timeout = p.Timeout.String()
		}
		if name == cfg.Current {
			current = "*"
		}
		table.AddRow(name, p.Server, timeout, current)
	}
	return table.Render(c.App.Writer)
}

func configSetProfile(c *cli.Context) error {
	name, err := requireArg(c, "profile name")
	if err != nil {
		return err
	}
	cfg := cliConfig(c)
	cfg.Profiles[name] = config.Profile{
		Server:  c.String("address"),
		Timeout: c.Duration("request-timeout"),
	}
	if err := config.Save(cfg, c.String("config")); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "profile %s saved\n", name)
	return nil
}

func configUse(c *cli.Context) error {
	name := c.Args().First()
	cfg := cliConfig(c)
	if _, ok := cfg.Profiles[name]; name != "" && !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	cfg.Current = name
	if err := config.Save(cfg, c.String("config")); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if name == "" {
		fmt.Fprintln(c.App.Writer, "default profile cleared")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "using profile %s\n", name)
	return nil
}
