package repl

import (
	"sort"
	"strings"
)

// Entry is one command path the REPL can complete, e.g. "token redeem".
type Entry struct {
	Path  string
	Usage string
}

// Lines handled by the REPL itself.
var builtins = []Entry{
	{Path: "help", Usage: "List commands, optionally filtered by prefix"},
	{Path: "history", Usage: "Show lines entered this session"},
	{Path: "exit", Usage: "Leave interactive mode"},
	{Path: "quit", Usage: "Leave interactive mode"},
}

// Completer matches command paths by prefix.
type Completer struct {
	entries []Entry
}

// NewCompleter returns a completer over the given commands plus the
// REPL builtins. Commands are sorted by path; builtins come last.
func NewCompleter(commands ...Entry) *Completer {
	entries := make([]Entry, 0, len(commands)+len(builtins))
	entries = append(entries, commands...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	entries = append(entries, builtins...)
	return &Completer{entries: entries}
}

// Complete returns the paths starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, e := range c.Match(prefix) {
		suggestions = append(suggestions, e.Path)
	}
	return suggestions
}

// Match returns the entries whose path starts with prefix.
func (c *Completer) Match(prefix string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if strings.HasPrefix(e.Path, prefix) {
			out = append(out, e)
		}
	}
	return out
}
