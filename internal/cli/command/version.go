package command

import (
	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/output"
	"github.com/fleetdesk/fleetdesk-go/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			info := buildinfo.Get()
			var data any = info
			if format == output.FormatTable {
				data = versionView(info)
			}
			return output.NewFormatter(format, false).Format(c.App.Writer, data)
		},
	}
}
