// Package repl provides the interactive shell for fleetdesk-cli.
//
// Each line is split into arguments and handed to an Executor, which runs
// it through the same command tree as the one-shot CLI. The shell keeps a
// persistent history and offers prefix completion of command paths.
package repl
