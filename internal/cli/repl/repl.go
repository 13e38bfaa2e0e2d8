package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// DefaultPrompt is printed before each line.
const DefaultPrompt = "companylock> "

// Executor runs one parsed line.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	completer *Completer
	history   *History
	exec      Executor
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory replaces the in-memory history.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithCommands registers the command paths listed by help.
func WithCommands(entries ...Entry) Option {
	return func(r *REPL) {
		r.completer = NewCompleter(entries...)
	}
}

// WithPrompt replaces DefaultPrompt.
func WithPrompt(p string) Option {
	return func(r *REPL) {
		r.prompt = p
	}
}

// New creates a new REPL instance.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    DefaultPrompt,
		completer: NewCompleter(),
		history:   NewHistory(""),
		exec:      exec,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until exit, EOF or ctx ends.
func (r *REPL) Run(ctx context.Context) error {
	reader, ok := r.input.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(r.input)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		args, perr := SplitArgs(line)
		if perr != nil {
			fmt.Fprintf(r.output, "error: %v\n", perr)
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "help":
			r.help(args[1:])
			continue
		case "history":
			for _, e := range r.history.Entries() {
				fmt.Fprintln(r.output, e)
			}
			continue
		}

		if err := r.exec(ctx, args); err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
		}
	}
}

func (r *REPL) help(args []string) {
	prefix := strings.Join(args, " ")
	tw := tabwriter.NewWriter(r.output, 0, 0, 3, ' ', 0)
	for _, e := range r.completer.Match(prefix) {
		fmt.Fprintf(tw, "  %s\t%s\n", e.Path, e.Usage)
	}
	_ = tw.Flush()
}

// SplitArgs splits a line on spaces, honouring single and double quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, c := range line {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inToken = true
		case c == ' ' || c == '\t':
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(c)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inToken {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return args, nil
}
