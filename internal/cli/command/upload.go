package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/connection"
)

// UploadCommand sends a multipart form.
func UploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Send files and fields as a multipart form",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "FIELD=PATH file part (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "field",
				Aliases: []string{"F"},
				Usage:   "NAME=VALUE form field (repeatable)",
			},
			&cli.StringFlag{
				Name:    "method",
				Aliases: []string{"X"},
				Usage:   "HTTP method",
				Value:   "POST",
			},
		},
		Action: upload,
	}
}

func upload(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: %s PATH", c.Command.HelpName)
	}

	form := connection.NewForm()
	for _, f := range c.StringSlice("field") {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --field %q, want NAME=VALUE", f)
		}
		form.AddField(name, value)
	}
	for _, f := range c.StringSlice("file") {
		field, path, ok := strings.Cut(f, "=")
		if !ok || field == "" || path == "" {
			return fmt.Errorf("invalid --file %q, want FIELD=PATH", f)
		}
		form.AddFilePath(field, path)
	}
	if err := form.Err(); err != nil {
		return err
	}

	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	body, err := rt.Client().Upload(ctx, c.Args().First(), form, connection.RequestOptions{
		Method: strings.ToUpper(c.String("method")),
	})
	if err != nil {
		return err
	}
	return rt.PrintBody(body)
}
