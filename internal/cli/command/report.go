package command

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/urfave/cli/v2"
)

const defaultReportName = "report.pdf"

// ReportCommand returns the report subcommand group.
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Download reports",
		Subcommands: []*cli.Command{
			{
				Name:      "download",
				Usage:     "Download a PDF report",
				ArgsUsage: "URL_OR_PATH",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Saved file name (default: last path segment)",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory to save into",
						Value:   ".",
					},
				},
				Action: reportDownload,
			},
		},
	}
}

func reportDownload(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: %s URL_OR_PATH", c.Command.HelpName)
	}
	target := c.Args().First()

	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	name := c.String("name")
	if name == "" {
		name = reportName(target)
	}
	rt.Saver.Dir = c.String("dir")

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if err := rt.Client().DownloadPDF(ctx, target, name); err != nil {
		return err
	}
	fmt.Fprintln(rt.Out, rt.Saver.Path(name))
	return nil
}

// reportName picks a file name from the URL path, adding .pdf when the
// last segment has no extension.
func reportName(target string) string {
	p := target
	if u, err := url.Parse(target); err == nil {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" || base == "" {
		return defaultReportName
	}
	if !strings.Contains(base, ".") {
		base += ".pdf"
	}
	return base
}
