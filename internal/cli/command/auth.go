package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/connection"
	"github.com/fleetdesk/fleetdesk-go/internal/cli/output"
)

// LoginCommand signs in and stores the session token.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Username (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted when omitted)",
				EnvVars: []string{"FLEETDESK_PASSWORD"},
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	in := bufio.NewReader(c.App.Reader)
	username := c.String("username")
	if username == "" {
		if username, err = prompt(in, rt.Err, "Username: "); err != nil {
			return err
		}
	}
	password := c.String("password")
	if password == "" {
		if password, err = prompt(in, rt.Err, "Password: "); err != nil {
			return err
		}
	}
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	spinner := output.NewSpinner(rt.Err, "Signing in")
	spinner.Start()
	result, err := rt.Client().Login(ctx, username, password)
	if err != nil {
		spinner.Fail("Sign-in failed")
		return err
	}
	spinner.Success("Signed in")

	name := username
	if result.User != nil && result.User.Username != "" {
		name = result.User.Username
	}
	if result.Role != "" {
		fmt.Fprintf(rt.Out, "Signed in as %s (%s)\n", name, result.Role)
	} else {
		fmt.Fprintf(rt.Out, "Signed in as %s\n", name)
	}
	return nil
}

func prompt(in *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// LogoutCommand clears the stored token.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session token",
		Action: func(c *cli.Context) error {
			rt, err := runtimeFrom(c)
			if err != nil {
				return err
			}
			return rt.Client().Logout()
		},
	}
}

// WhoamiCommand shows the signed-in user.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "role",
				Usage: "Fail unless the user has this role (" + strings.Join(connection.Roles, ", ") + ")",
			},
		},
		Action: whoami,
	}
}

func whoami(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	var profile *connection.Profile
	if role := strings.ToUpper(c.String("role")); role != "" {
		profile, err = rt.Client().GuardRole(ctx, role)
		if err != nil {
			return err
		}
	} else {
		me, err := rt.Client().LoadMe(ctx)
		if err != nil {
			return err
		}
		profile = me.Me
	}
	if profile == nil {
		return errors.New("server returned no profile")
	}
	return rt.Show(profile, profileView{profile})
}
