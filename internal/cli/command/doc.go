// Package command defines the fleetdesk-cli command tree on urfave/cli/v2.
//
// Every command that talks to the API obtains a Runtime through
// runtimeFrom, which loads the configuration, opens the local store and
// builds the API client on first use. The shell command reuses one Runtime
// for every line it runs.
package command
