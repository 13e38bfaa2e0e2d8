package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/config"
	"github.com/NDP4/CompanyLock-Manager/internal/core/service"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/buildinfo"
)

// AppName is the program name used in help and the User-Agent.
const AppName = "companylock-cli"

const runtimeKey = "runtime"

type options struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	clock  service.Clock
}

// Option customises App.
type Option func(*options)

// WithIO replaces the standard streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdin = stdin
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithClock replaces the clock that drives token expiry and the reveal
// countdown.
func WithClock(c service.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// App creates the CLI application.
func App(opts ...Option) *cli.App {
	o := &options{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}
	return newApp(o, nil)
}

// newApp builds the command tree. A shared runtime is reused as-is and
// left open, which is how REPL lines run.
func newApp(o *options, shared *Runtime) *cli.App {
	app := &cli.App{
		Name:      AppName,
		Usage:     "CompanyLock ephemeral credential exchange",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Reader:    o.stdin,
		Writer:    o.stdout,
		ErrWriter: o.stderr,
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			PasswdCommand(),
			TokenCommand(),
			UserCommand(),
			AuditCommand(),
			SystemCommand(),
			ConfigCommand(),
			REPLCommand(),
		},
		Metadata: map[string]any{},
		Before: func(c *cli.Context) error {
			if shared != nil {
				c.App.Metadata[runtimeKey] = shared
				return nil
			}
			path := c.String("config")
			cfg, err := config.Load(path, flagOverrides(c))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if path == "" {
				path = config.DefaultConfigPath()
			}
			rt, err := newRuntime(cfg, path, o)
			if err != nil {
				return err
			}
			c.App.Metadata[runtimeKey] = rt
			return nil
		},
		After: func(c *cli.Context) error {
			if shared != nil {
				return nil
			}
			if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
				return rt.Close()
			}
			return nil
		},
	}
	if shared != nil {
		// Config flags were resolved when the REPL started; only
		// per-line flags such as --wide still matter.
		app.HideVersion = true
	}
	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "CompanyLock server address (e.g. localhost:8000)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			EnvVars: []string{"COMPANYLOCK_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// flagOverrides returns the config keys set explicitly on the command line.
func flagOverrides(c *cli.Context) map[string]any {
	flags := map[string]any{}
	if c.IsSet("server") {
		flags["server"] = c.String("server")
	}
	if c.IsSet("output") {
		flags["output"] = c.String("output")
	}
	if c.Bool("verbose") {
		flags["log.level"] = "debug"
	}
	return flags
}

// runtimeFrom retrieves the runtime installed by the Before hook.
func runtimeFrom(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}
	return nil, fmt.Errorf("runtime not initialized")
}

// services returns the runtime with its flows built.
func services(c *cli.Context) (*Runtime, error) {
	rt, err := runtimeFrom(c)
	if err != nil {
		return nil, err
	}
	if err := rt.Services(c.Context); err != nil {
		return nil, err
	}
	return rt, nil
}

// wide reports the global --wide flag.
func wide(c *cli.Context) bool {
	return c.Bool("wide")
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
