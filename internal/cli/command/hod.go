package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/connection"
)

// HodCommand returns the HOD registration subcommand group (admin only).
func HodCommand() *cli.Command {
	return &cli.Command{
		Name:  "hod",
		Usage: "Review HOD registrations",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List pending registrations",
				Action:  hodList,
			},
			{
				Name:      "approve",
				Usage:     "Approve a registration",
				ArgsUsage: "ID",
				Action:    hodDecide("approve"),
			},
			{
				Name:      "reject",
				Usage:     "Reject a registration",
				ArgsUsage: "ID",
				Action:    hodDecide("reject"),
			},
		},
	}
}

func hodList(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	regs, err := rt.Client().PendingHodRegistrations(ctx)
	if err != nil {
		return err
	}
	if len(regs) == 0 && rt.tableOutput() {
		fmt.Fprintln(rt.Out, "No pending registrations")
		return nil
	}
	return rt.Show(regs, registrationsView(regs))
}

func hodDecide(action string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("usage: %s ID", c.Command.HelpName)
		}
		id := c.Args().First()

		rt, err := runtimeFrom(c)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(c, rt)
		defer cancel()

		client := rt.Client()
		var body *connection.Body
		if action == "approve" {
			body, err = client.ApproveHodRegistration(ctx, id)
		} else {
			body, err = client.RejectHodRegistration(ctx, id)
		}
		if err != nil {
			return err
		}

		if msg := body.Object()["message"]; msg != nil {
			fmt.Fprintln(rt.Out, msg)
			return nil
		}
		fmt.Fprintf(rt.Out, "Registration %s: %sd\n", id, action)
		return nil
	}
}
