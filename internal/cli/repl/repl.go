package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/logger"
)

// DefaultPrompt is shown before each line.
const DefaultPrompt = "fleetdesk> "

// ErrUnterminatedQuote is returned by SplitArgs for an unclosed quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// Config configures a REPL.
type Config struct {
	In        io.Reader
	Out       io.Writer
	Prompt    string
	Executor  Executor
	Completer *Completer
	History   *History
	Logger    logger.Logger
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
	log       logger.Logger

	// outMu serialises writes from the loop and from Printf callers such
	// as the config watcher.
	outMu sync.Mutex
}

// New creates a new REPL instance.
func New(cfg Config) *REPL {
	r := &REPL{
		input:     cfg.In,
		output:    cfg.Out,
		prompt:    cfg.Prompt,
		exec:      cfg.Executor,
		completer: cfg.Completer,
		history:   cfg.History,
		log:       cfg.Logger,
	}
	if r.input == nil {
		r.input = os.Stdin
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if r.prompt == "" {
		r.prompt = DefaultPrompt
	}
	if r.completer == nil {
		r.completer = NewCompleter()
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	if r.log == nil {
		r.log = logger.Discard()
	}
	return r
}

// Printf writes a message to the shell output.
func (r *REPL) Printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.output, format, args...)
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		r.Printf("%s", r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				r.Printf("\n")
				return nil
			}
			continue
		}

		r.history.Add(line)
		if done := r.handle(ctx, line); done {
			return nil
		}
		if eof {
			r.Printf("\n")
			return nil
		}
	}
}

// handle runs a line and reports whether the shell should exit.
func (r *REPL) handle(ctx context.Context, line string) bool {
	args, err := SplitArgs(line)
	if err != nil {
		r.Printf("Error: %v\n", err)
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "help", "?":
		r.help(strings.Join(args[1:], " "))
		return false
	case "history":
		for i, entry := range r.history.Entries() {
			r.Printf("%4d  %s\n", i+1, entry)
		}
		return false
	}

	if r.exec == nil {
		r.Printf("Error: no command handler\n")
		return false
	}
	if err := r.exec(ctx, args); err != nil {
		r.log.Debug("shell command failed", "line", line, "error", err)
		r.Printf("Error: %v\n", err)
	}
	return false
}

func (r *REPL) help(prefix string) {
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		r.Printf("No commands match %q\n", prefix)
		return
	}
	for _, cmd := range matches {
		r.Printf("  %s\n", cmd)
	}
}

// SplitArgs splits a line into arguments. Single and double quotes group
// words and a backslash escapes the next character outside single quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(c)
			inArg = true
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
