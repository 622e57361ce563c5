// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package term

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// newlineMarker is how a multi-line command's embedded newlines are encoded
// in the on-disk history file, so that `wc -l $HISTFILE` still counts one
// line per history entry the way spec's persistent-state note requires:
// the return symbol followed by a NUL, neither of which can occur in a
// shell command line on its own.
const newlineMarker = "↵\x00"

// History is an in-memory ring of past command lines plus the on-disk
// file they are loaded from and saved back to. Treated as opaque
// line-oriented text per spec §1's out-of-scope note on "the on-disk
// history file format" — this package owns only the multi-line encoding
// spec §6 spells out, not any richer format (timestamps, session markers).
type History struct {
	path    string
	max     int
	lines   []string
	cursor  int // position while walking history with Up/Down; len(lines) means "not walking"
	pending string
}

// NewHistory returns a History backed by path, capped at max entries on
// save (spec's $HISTFILESIZE). max <= 0 means unlimited.
func NewHistory(path string, max int) *History {
	return &History{path: path, max: max}
}

// Load reads path into memory, decoding the newline marker back into real
// newlines. A missing file is not an error: a shell's first run has none.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		h.lines = append(h.lines, strings.ReplaceAll(sc.Text(), newlineMarker, "\n"))
	}
	h.resetCursor()
	return sc.Err()
}

// Add appends line to history, unless it is empty or a repeat of the most
// recent entry (bash's default HISTCONTROL-less behavior dedupes
// immediate repeats only).
func (h *History) Add(line string) {
	if line == "" {
		return
	}
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		h.resetCursor()
		return
	}
	h.lines = append(h.lines, line)
	h.resetCursor()
}

// Save rewrites the history file, trimmed to max entries, atomically via
// renameio so a crash mid-write never truncates the previous file (the
// same atomic-replace posture the teacher's go.mod pulls renameio in for).
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	lines := h.lines
	if h.max > 0 && len(lines) > h.max {
		lines = lines[len(lines)-h.max:]
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.ReplaceAll(l, "\n", newlineMarker))
		b.WriteByte('\n')
	}
	return renameio.WriteFile(h.path, []byte(b.String()), 0o600)
}

func (h *History) resetCursor() { h.cursor = len(h.lines) }

// Prev walks one entry back (Up arrow), returning it and ok=true, or
// ("", false) if already at the oldest entry. The first call from a fresh
// walk remembers `current` so Next can return the user back to it.
func (h *History) Prev(current string) (string, bool) {
	if h.cursor == len(h.lines) {
		h.pending = current
	}
	if h.cursor == 0 {
		return "", false
	}
	h.cursor--
	return h.lines[h.cursor], true
}

// Next walks one entry forward (Down arrow), returning the in-progress
// line the user was editing once the walk reaches the bottom.
func (h *History) Next() (string, bool) {
	if h.cursor >= len(h.lines) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.lines) {
		return h.pending, true
	}
	return h.lines[h.cursor], true
}

// Len reports the number of entries currently held.
func (h *History) Len() int { return len(h.lines) }

// At returns the i'th most recent entry (0 = most recent), for `!N`/`!-N`
// history-substitution support.
func (h *History) At(i int) (string, bool) {
	idx := len(h.lines) - 1 - i
	if idx < 0 || idx >= len(h.lines) {
		return "", false
	}
	return h.lines[idx], true
}

// ByIndex returns the n'th entry counting from 1 the way `!N` does.
func (h *History) ByIndex(n int) (string, bool) {
	if n <= 0 || n > len(h.lines) {
		return "", false
	}
	return h.lines[n-1], true
}

// ByPrefix returns the most recent entry starting with prefix, for `!string`.
func (h *History) ByPrefix(prefix string) (string, bool) {
	for i := len(h.lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(h.lines[i], prefix) {
			return h.lines[i], true
		}
	}
	return "", false
}

// ExpandBang applies `!!`, `!N`, `!-N`, and `!string` history substitution
// to line, the way spec §4.10's line editor note describes, before it is
// handed to the parser.
func (h *History) ExpandBang(line string) string {
	if !strings.Contains(line, "!") {
		return line
	}
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c != '!' || i+1 >= len(line) {
			b.WriteByte(c)
			continue
		}
		rest := line[i+1:]
		switch {
		case rest[0] == '!':
			if e, ok := h.At(0); ok {
				b.WriteString(e)
			}
			i++
		case rest[0] == '-' && len(rest) > 1 && isDigit(rest[1]):
			j := 1
			for j < len(rest) && isDigit(rest[j]) {
				j++
			}
			n, _ := strconv.Atoi(rest[1:j])
			if e, ok := h.At(n - 1); ok {
				b.WriteString(e)
			}
			i += j
		case isDigit(rest[0]):
			j := 0
			for j < len(rest) && isDigit(rest[j]) {
				j++
			}
			n, _ := strconv.Atoi(rest[:j])
			if e, ok := h.ByIndex(n); ok {
				b.WriteString(e)
			}
			i += j
		case isWordStart(rest[0]):
			j := 0
			for j < len(rest) && isWordByte(rest[j]) {
				j++
			}
			if e, ok := h.ByPrefix(rest[:j]); ok {
				b.WriteString(e)
			}
			i += j
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordByte(c byte) bool {
	return isWordStart(c) || isDigit(c)
}
