package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/output"
	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/shutdown"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue and redeem access tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Issue a single-use token for an employee",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Employee ID or username",
					},
					&cli.IntFlag{
						Name:    "duration",
						Aliases: []string{"d"},
						Value:   domain.DefaultTokenDurationMinutes,
						Usage:   "Validity in minutes (5-60)",
					},
				},
				Action: tokenGenerate,
			},
			{
				Name:  "redeem",
				Usage: "Redeem a token and display the password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Your username (or ID when logged in)",
					},
					&cli.StringFlag{
						Name:    "token",
						Aliases: []string{"t"},
						Usage:   "Token from your administrator; prompted when omitted",
					},
				},
				Action: tokenRedeem,
			},
		},
	}
}

func tokenGenerate(c *cli.Context) error {
	rt, err := services(c)
	if err != nil {
		return err
	}

	var target *domain.Identity
	if ref := strings.TrimSpace(c.String("user")); ref != "" {
		if target, err = rt.Directory.Resolve(c.Context, ref); err != nil {
			return err
		}
	}
	var targetID int64
	if target != nil {
		targetID = target.ID
	}

	stop := rt.startSpinner("generating token")
	tok, err := rt.Issuance.Generate(c.Context, targetID, c.Int("duration"))
	stop()
	if err != nil {
		return err
	}
	return rt.Print(output.NewTokenView(tok, target), wide(c))
}

func tokenRedeem(c *cli.Context) error {
	rt, err := services(c)
	if err != nil {
		return err
	}

	claimed, err := resolveClaim(c.Context, rt, c.String("user"))
	if err != nil {
		return err
	}

	tok := c.String("token")
	if tok == "" && claimed.Claimable() {
		if tok, err = rt.PromptSecret("Token: "); err != nil {
			return err
		}
	}

	views, unsubscribe := rt.Redeemer.Subscribe()
	defer unsubscribe()

	stop := rt.startSpinner("verifying token")
	err = rt.Redeemer.Redeem(c.Context, claimed, tok)
	stop()
	if err != nil {
		return err
	}

	ctx, cancel := shutdown.WithSignals(c.Context)
	defer cancel()
	output.NewCountdown(rt.Stdout, rt.Interactive(), rt.Redeemer.RevealSeconds()).
		Follow(ctx, views, rt.Redeemer.Dismiss)
	rt.Redeemer.Reset()
	return nil
}

// resolveClaim turns --user into the identity the redeemer binds to.
// Logged-in operators resolve through the directory; otherwise only a
// username can be claimed, matching the unauthenticated employee flow.
func resolveClaim(ctx context.Context, rt *Runtime, ref string) (domain.Identity, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Identity{}, nil
	}
	if rt.Session.Authenticated() {
		id, err := rt.Directory.Resolve(ctx, ref)
		if err != nil {
			return domain.Identity{}, err
		}
		return *id, nil
	}
	if _, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return domain.Identity{}, domain.ErrValidation.WithDetails("pass your username, or log in to select by ID")
	}
	return domain.Identity{Username: ref}, nil
}
