package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/output"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server health and client diagnostics",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check server health",
				Action: systemHealth,
			},
			{
				Name:   "metrics",
				Usage:  "Dump client metrics in Prometheus text format",
				Action: systemMetrics,
			},
			{
				Name:   "version",
				Usage:  "Show build information",
				Action: systemVersion,
			},
		},
	}
}

func systemHealth(c *cli.Context) error {
	rt, err := services(c)
	if err != nil {
		return err
	}

	h, err := rt.Directory.Health(c.Context)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if err := rt.Print(output.HealthView{HealthStatus: *h, Target: rt.API.BaseURL()}, wide(c)); err != nil {
		return err
	}
	if !h.Healthy() {
		return fmt.Errorf("server unhealthy: %s", h.Status)
	}
	return nil
}

func systemMetrics(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	return rt.Metrics.WriteText(rt.Stdout)
}

func systemVersion(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	return rt.Print(buildinfo.Get(), false)
}
