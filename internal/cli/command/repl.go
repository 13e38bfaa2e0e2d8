package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/repl"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/confloader"
	"github.com/NDP4/CompanyLock-Manager/internal/storage"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start interactive mode",
		Action: runREPL,
	}
}

func runREPL(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if rt.inREPL {
		return fmt.Errorf("already in interactive mode")
	}
	if err := rt.Services(c.Context); err != nil {
		return err
	}
	rt.inREPL = true
	defer func() { rt.inREPL = false }()

	if rt.Config.Session.Backend == storage.BackendFile {
		stop, err := rt.watchSession(c.Context)
		if err != nil {
			rt.Log.Warn("session file watch disabled", "error", err)
		} else {
			defer stop()
		}
	}

	history := repl.NewHistory(rt.Config.HistoryFile)
	if err := history.Load(); err != nil {
		rt.Log.Warn("history load failed", "error", err)
	}
	defer func() {
		if err := history.Save(); err != nil {
			rt.Log.Warn("history save failed", "error", err)
		}
	}()

	if rt.Interactive() {
		fmt.Fprintf(rt.Stderr, "%s interactive mode. Type 'help' for commands, 'exit' to quit.\n", AppName)
	}

	r := repl.New(rt.execLine,
		repl.WithIO(rt.reader, rt.Stdout),
		repl.WithHistory(history),
		repl.WithCommands(commandEntries("", c.App.Commands)...),
	)
	return r.Run(c.Context)
}

// commandEntries flattens the command tree into the leaf paths the REPL
// can run. The repl command itself and urfave's help are left out.
func commandEntries(parent string, cmds []*cli.Command) []repl.Entry {
	var out []repl.Entry
	for _, cmd := range cmds {
		if cmd.Hidden || cmd.Name == "help" || cmd.Name == "repl" {
			continue
		}
		path := strings.TrimSpace(parent + " " + cmd.Name)
		if len(cmd.Subcommands) > 0 {
			out = append(out, commandEntries(path, cmd.Subcommands)...)
			continue
		}
		out = append(out, repl.Entry{Path: path, Usage: cmd.Usage})
	}
	return out
}

// execLine runs one REPL line through the command tree on the shared runtime.
func (rt *Runtime) execLine(ctx context.Context, args []string) error {
	app := newApp(rt.opts, rt)
	return app.RunContext(ctx, append([]string{AppName}, args...))
}

// watchSession reloads the session store when another process rewrites
// the session file.
func (rt *Runtime) watchSession(ctx context.Context) (func(), error) {
	path := rt.Config.Session.Path
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.Log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		if err := rt.Session.Reload(ctx); err != nil {
			rt.Log.Warn("session reload failed", "error", err)
		}
	})
	w.StartAsync()

	return func() { _ = w.Stop() }, nil
}
