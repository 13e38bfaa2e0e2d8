package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHistorySize bounds the entries kept in memory and on disk.
const DefaultHistorySize = 1000

// maskedFlags have their value replaced before a line is recorded.
var maskedFlags = map[string]bool{
	"--token": true, "-t": true,
	"--password": true,
}

// History manages command history for the REPL.
type History struct {
	entries []string
	maxSize int
	file    string
}

// NewHistory creates a History persisted to file; "" keeps it in memory.
func NewHistory(file string) *History {
	return &History{
		entries: make([]string, 0),
		maxSize: DefaultHistorySize,
		file:    file,
	}
}

// Add records cmd with secret flag values masked. A repeat of the
// previous entry is not recorded.
func (h *History) Add(cmd string) {
	cmd = Mask(cmd)
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

// Get returns the history entry at index (0 = most recent).
func (h *History) Get(index int) string {
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Entries returns a copy, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Load loads history from file.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	file, err := os.Open(h.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.Add(line)
		}
	}
	return scanner.Err()
}

// Save writes history to file, readable only by the owner.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(h.file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, entry := range h.entries {
		if _, err := w.WriteString(entry + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Mask replaces the values of secret flags with ***.
func Mask(line string) string {
	fields := strings.Fields(line)
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if name, _, ok := strings.Cut(f, "="); ok && maskedFlags[name] {
			fields[i] = name + "=***"
			continue
		}
		if maskedFlags[f] && i+1 < len(fields) {
			fields[i+1] = "***"
			i++
		}
	}
	return strings.Join(fields, " ")
}
