package command

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/config"
	"github.com/fleetdesk/fleetdesk-go/internal/cli/repl"
	"github.com/fleetdesk/fleetdesk-go/internal/infra/confloader"
)

const historyFile = "history"

// ShellCommand starts the interactive shell.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run commands interactively",
		Description: "Each line is a fleetdesk-cli command without the program name.\n" +
			"--output and --wide may be given per line; other global flags are fixed\n" +
			"when the shell starts. The config file is reloaded when it changes.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not reload the config file on change",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not read or write the history file",
			},
		},
		Action: shell,
	}
}

func shell(c *cli.Context) error {
	if shared, _ := c.App.Metadata[sharedKey].(bool); shared {
		return errors.New("already in a shell")
	}
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	historyPath := ""
	if !c.Bool("no-history") {
		historyPath = filepath.Join(config.HomeDir(), historyFile)
	}
	history := repl.NewHistory(historyPath, 0)
	if err := history.Load(); err != nil {
		rt.Log.Warn("could not load shell history", "error", err)
	}

	r := repl.New(repl.Config{
		In:        c.App.Reader,
		Out:       rt.Out,
		Executor:  shellExecutor(rt),
		Completer: repl.NewCompleter(commandPaths("", App().Commands)...),
		History:   history,
		Logger:    rt.Log,
	})

	if !c.Bool("no-watch") && rt.ConfigPath != "" {
		w, err := confloader.NewWatcher(rt.ConfigPath, confloader.WithWatcherLogger(rt.Log))
		if err != nil {
			rt.Log.Debug("config watch disabled", "path", rt.ConfigPath, "error", err)
		} else {
			defer w.Stop()
			w.OnChange(func(path string) {
				if err := rt.Reload(); err != nil {
					r.Printf("\nconfig reload failed: %v\n", err)
					return
				}
				rt.Log.Info("configuration reloaded", "path", path)
				r.Printf("\nconfiguration reloaded\n")
			})
		}
	}

	runErr := r.Run(c.Context)
	if err := history.Save(); err != nil {
		rt.Log.Warn("could not save shell history", "error", err)
	}
	return runErr
}

// shellExecutor runs each line through a fresh app sharing rt. Prompts
// read from an empty input because the shell owns stdin.
func shellExecutor(rt *Runtime) repl.Executor {
	return func(ctx context.Context, args []string) error {
		app := App()
		app.Metadata[runtimeKey] = rt
		app.Metadata[sharedKey] = true
		app.Reader = strings.NewReader("")
		app.Writer = rt.Out
		app.ErrWriter = rt.Err
		app.ExitErrHandler = func(*cli.Context, error) {}
		return app.RunContext(ctx, append([]string{app.Name}, args...))
	}
}

// commandPaths lists "parent child" paths for completion.
func commandPaths(prefix string, cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		p := strings.TrimSpace(prefix + " " + cmd.Name)
		paths = append(paths, p)
		paths = append(paths, commandPaths(p, cmd.Subcommands)...)
	}
	return paths
}
