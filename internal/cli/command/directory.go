package command

import (
	"github.com/urfave/cli/v2"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/output"
	"github.com/NDP4/CompanyLock-Manager/internal/core/service"
)

// UserCommand returns the user subcommand group.
func UserCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Browse the user directory",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List employees",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Include administrators and inactive users",
					},
				},
				Action: func(c *cli.Context) error {
					rt, err := services(c)
					if err != nil {
						return err
					}
					users, err := rt.Directory.Users(c.Context, c.Bool("all"))
					if err != nil {
						return err
					}
					return rt.Print(output.UserList(users), wide(c))
				},
			},
		},
	}
}

// AuditCommand returns the audit subcommand group.
func AuditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Inspect the audit log",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show the newest audit entries",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   service.DefaultAuditLimit,
						Usage:   "Number of entries (1-1000)",
					},
				},
				Action: func(c *cli.Context) error {
					rt, err := services(c)
					if err != nil {
						return err
					}
					entries, err := rt.Directory.AuditLogs(c.Context, c.Int("limit"))
					if err != nil {
						return err
					}
					return rt.Print(output.AuditList(entries), wide(c))
				},
			},
		},
	}
}
