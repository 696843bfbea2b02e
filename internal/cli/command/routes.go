package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

// RoutesCommand returns the routes subcommand group.
func RoutesCommand() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "Browse and edit routes",
		Subcommands: []*cli.Command{
			{
				Name:  "tree",
				Usage: "Show routes with their sub-route counts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "refresh",
						Aliases: []string{"r"},
						Usage:   "Bypass the local cache",
					},
				},
				Action: routesTree,
			},
			{
				Name:      "subroutes",
				Usage:     "List the sub-routes of a route",
				ArgsUsage: "ROUTE_ID",
				Action:    routesSubRoutes,
			},
			{
				Name:   "invalidate",
				Usage:  "Drop the cached route tree",
				Action: routesInvalidate,
			},
			{
				Name:      "bulk",
				Usage:     "Create or update sub-routes, one per line",
				ArgsUsage: "ROUTE_ID",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "line",
						Aliases: []string{"l"},
						Usage:   "Sub-route line (repeatable)",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read lines from FILE, or - for stdin",
					},
				},
				Action: routesBulk,
			},
		},
	}
}

func routesTree(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	tree, err := rt.Routes().Get(ctx, c.Bool("refresh"))
	if err != nil {
		return err
	}
	return rt.Show(tree, routeTreeView{tree})
}

func routesSubRoutes(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: %s ROUTE_ID", c.Command.HelpName)
	}
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	cache := rt.Routes()
	if _, err := cache.Get(ctx, false); err != nil {
		return err
	}
	subs := cache.SubRoutesFor(c.Args().First())
	return rt.Show(subs, subRoutesView(subs))
}

func routesInvalidate(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	rt.Routes().Invalidate()
	fmt.Fprintln(rt.Out, "Route cache cleared")
	return nil
}

func routesBulk(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: %s ROUTE_ID", c.Command.HelpName)
	}
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	lines := c.StringSlice("line")
	if file := c.String("file"); file != "" {
		var r io.Reader = c.App.Reader
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open lines file: %w", err)
			}
			defer f.Close()
			r = f
		}
		more, err := readLines(r)
		if err != nil {
			return err
		}
		lines = append(lines, more...)
	}
	if len(lines) == 0 {
		return fmt.Errorf("no lines given; use --line or --file")
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	body, err := rt.Client().BulkUpsertSubRoutes(ctx, c.Args().First(), lines)
	if err != nil {
		return err
	}
	return rt.PrintBody(body)
}

// readLines returns the non-blank lines of r, trimmed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}
