package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/output"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Log in as an administrator",
		ArgsUsage: "[USERNAME]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "password-file",
				Usage: "Read the password from a file instead of prompting",
			},
		},
		Action: loginAction,
	}
}

func loginAction(c *cli.Context) error {
	rt, err := services(c)
	if err != nil {
		return err
	}

	username := c.Args().First()
	if username == "" {
		if username, err = rt.PromptLine("Username: "); err != nil {
			return err
		}
	}

	var password string
	if path := c.String("password-file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read password file: %w", err)
		}
		password = strings.TrimRight(string(b), "\r\n")
	} else if password, err = rt.PromptSecret("Password: "); err != nil {
		return err
	}

	_, err = rt.Auth.Login(c.Context, username, password)
	return err
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the local session",
		Action: func(c *cli.Context) error {
			rt, err := services(c)
			if err != nil {
				return err
			}
			rt.Auth.Logout()
			return nil
		},
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the logged-in identity",
		Action: func(c *cli.Context) error {
			rt, err := services(c)
			if err != nil {
				return err
			}
			snap := rt.Session.Snapshot()
			if !snap.Authenticated {
				return fmt.Errorf("not logged in")
			}
			return rt.Print(output.NewSessionView(snap, rt.API.BaseURL()), wide(c))
		},
	}
}

// PasswdCommand returns the passwd command.
func PasswdCommand() *cli.Command {
	return &cli.Command{
		Name:   "passwd",
		Usage:  "Change the password of the logged-in administrator",
		Action: passwdAction,
	}
}

func passwdAction(c *cli.Context) error {
	rt, err := services(c)
	if err != nil {
		return err
	}

	current, err := rt.PromptSecret("Current password: ")
	if err != nil {
		return err
	}
	next, err := rt.PromptSecret("New password: ")
	if err != nil {
		return err
	}
	confirm, err := rt.PromptSecret("Confirm new password: ")
	if err != nil {
		return err
	}

	return rt.Auth.ChangePassword(c.Context, current, next, confirm)
}
