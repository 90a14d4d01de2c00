package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fxgallery/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:      "get",
				Usage:     "Print one configuration value",
				ArgsUsage: "KEY",
				Action:    configGet,
			},
			{
				Name:      "set",
				Usage:     "Store a configuration value in the config file",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

func configFile(c *cli.Context) string {
	if path := c.String("config"); path != "" {
		return path
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	shown := *GetConfig(c)
	if shown.AdminKey != "" {
		shown.AdminKey = "********"
	}
	return render(c, &shown)
}

func configGet(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: config get KEY")
	}
	value, err := config.Get(GetConfig(c), c.Args().First())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, value)
	return err
}

// configSet edits the file contents only, so values that came from the
// environment are not written back.
func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: config set KEY VALUE")
	}

	path := configFile(c)
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if err := config.Set(cfg, c.Args().Get(0), c.Args().Get(1)); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "Saved %s to %s\n", c.Args().Get(0), path)
	return err
}

func configPath(c *cli.Context) error {
	_, err := fmt.Fprintln(c.App.Writer, configFile(c))
	return err
}
