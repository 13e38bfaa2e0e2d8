package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/config"
	"github.com/NDP4/CompanyLock-Manager/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:  "cli",
				Usage: "CLI local configuration",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Show the resolved CLI configuration",
						Action: configCLIShow,
					},
					{
						Name:   "validate",
						Usage:  "Validate the resolved CLI configuration",
						Action: configCLIValidate,
					},
					{
						Name:  "init",
						Usage: "Write the resolved configuration to the config file",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:    "force",
								Aliases: []string{"f"},
								Usage:   "Overwrite an existing file",
							},
						},
						Action: configCLIInit,
					},
				},
			},
		},
	}
}

func configCLIShow(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	state := "not found, showing defaults"
	if _, err := os.Stat(rt.ConfigPath); err == nil {
		state = "loaded"
	}
	fmt.Fprintf(rt.Stderr, "# %s (%s)\n", rt.ConfigPath, state)

	format, err := output.ParseFormat(rt.Config.Output)
	if err != nil || format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format, false).Format(rt.Stdout, rt.Config)
}

func configCLIValidate(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := config.Verify(rt.Config); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	fmt.Fprintf(rt.Stdout, "✓ configuration is valid: %s\n", rt.ConfigPath)
	return nil
}

func configCLIInit(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	_, err = os.Stat(rt.ConfigPath)
	switch {
	case err == nil && !c.Bool("force"):
		return fmt.Errorf("%s already exists (use --force to overwrite)", rt.ConfigPath)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if err := config.Verify(rt.Config); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	if err := config.Save(rt.Config, rt.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintf(rt.Stdout, "wrote %s\n", rt.ConfigPath)
	return nil
}
