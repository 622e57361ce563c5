// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

// Package term implements C11: raw-mode keystroke reading for an
// interactive shell, SIGINT-aware cancellation of the read loop, and the
// on-disk history spec §6 requires. The teacher (_examples/mvdan-sh) is a
// pure interpreter library with no interactive front end of its own —
// interp/terminal_test.go only exercises `[[ -t N ]]` against a pty, never
// reads a line from one — so this package is new code written in the
// teacher's idiom (plain structs, explicit error returns, no channels
// except where a signal genuinely needs one) on top of the domain stack
// SPEC_FULL.md's DOMAIN STACK section assigns it: golang.org/x/term for
// raw mode, github.com/creack/pty for tests, github.com/google/renameio/v2
// for the history file (see history.go).
package term

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sush-shell/sush/internal/feeder"
)

// ErrInterrupt is returned by ReadLine when the user pressed Ctrl-C,
// matching spec's Feeder contract ("feed_line() -> Ok | Interrupt | Eof |
// Other").
var ErrInterrupt = errors.New("sush: interrupt")

const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyBackspace = 0x7f
	keyCtrlH     = 0x08
	keyTab       = '\t'
	keyEnter     = '\r'
	keyNewline   = '\n'
	keyEsc       = 0x1b
)

// Editor is a single-line raw-mode reader: it decodes arrow keys,
// backspace, Ctrl-C, and Ctrl-D, walks History on Up/Down, and otherwise
// inserts printable bytes at the cursor. One Editor is reused across the
// whole interactive session so history persists between lines.
type Editor struct {
	in  *os.File
	out *os.File
	sig *ParentSignals
	hist *History

	prompt string
	line   []rune
	cursor int
}

var _ feeder.Prompter = (*Editor)(nil)

// NewEditor wraps in/out (typically os.Stdin/os.Stdout) as a line editor.
// hist may be nil to disable history navigation.
func NewEditor(in, out *os.File, hist *History, sig *ParentSignals) *Editor {
	return &Editor{in: in, out: out, hist: hist, sig: sig}
}

// SetPrompt implements feeder.Prompter, letting the feeder show PS1 for a
// new logical command and PS2 for a continuation line.
func (e *Editor) SetPrompt(p string) { e.prompt = p }

// ReadLine implements feeder.Source: it puts the terminal in raw mode,
// reads and decodes one line of keystrokes, and restores the previous
// terminal state before returning, so a spawned child or another part of
// the shell that reads from e.in between calls sees cooked mode.
func (e *Editor) ReadLine() (string, error) {
	fd := int(e.in.Fd())
	if !term.IsTerminal(fd) {
		return e.readLineCooked()
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return e.readLineCooked()
	}
	defer term.Restore(fd, old)

	e.line = e.line[:0]
	e.cursor = 0
	e.redraw()

	buf := make([]byte, 1)
	for {
		n, err := e.in.Read(buf)
		if err != nil || n == 0 {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", err
		}
		switch b := buf[0]; b {
		case keyCtrlC:
			fmt.Fprint(e.out, "^C\r\n")
			if e.sig != nil {
				e.sig.SigIntAndClear()
			}
			return "", ErrInterrupt
		case keyCtrlD:
			if len(e.line) == 0 {
				fmt.Fprint(e.out, "\r\n")
				return "", io.EOF
			}
			e.deleteForward()
		case keyEnter, keyNewline:
			fmt.Fprint(e.out, "\r\n")
			line := string(e.line)
			if e.hist != nil {
				e.hist.Add(line)
			}
			return line, nil
		case keyBackspace, keyCtrlH:
			e.deleteBackward()
		case keyTab:
			// Completion is out of scope (spec §1); a literal tab is
			// discarded rather than inserted, matching the low-ceremony
			// treatment the rest of C2 gives characters it doesn't
			// specially handle.
		case keyEsc:
			if e.readEscapeSeq() {
				continue
			}
		default:
			if b >= 0x20 && b < 0x7f {
				e.insert(rune(b))
			}
			// Other control bytes and raw UTF-8 continuation bytes above
			// 0x7f are passed through uninterpreted; full UTF-8-aware
			// editing is beyond what an ASCII-oriented raw-mode reader
			// needs for spec's scenarios.
		}
	}
}

// readEscapeSeq consumes the 2-3 bytes of a CSI sequence (arrow keys) that
// follow ESC, applying the corresponding edit. Returns false if the bytes
// read don't form a recognized sequence (the ESC itself is then dropped).
func (e *Editor) readEscapeSeq() bool {
	seq := make([]byte, 2)
	if n, _ := e.in.Read(seq); n < 2 || seq[0] != '[' {
		return false
	}
	switch seq[1] {
	case 'A': // Up
		if e.hist != nil {
			if v, ok := e.hist.Prev(string(e.line)); ok {
				e.setLine(v)
			}
		}
	case 'B': // Down
		if e.hist != nil {
			if v, ok := e.hist.Next(); ok {
				e.setLine(v)
			}
		}
	case 'C': // Right
		if e.cursor < len(e.line) {
			e.cursor++
		}
	case 'D': // Left
		if e.cursor > 0 {
			e.cursor--
		}
	default:
		return false
	}
	e.redraw()
	return true
}

func (e *Editor) insert(r rune) {
	e.line = append(e.line, 0)
	copy(e.line[e.cursor+1:], e.line[e.cursor:])
	e.line[e.cursor] = r
	e.cursor++
	e.redraw()
}

func (e *Editor) deleteBackward() {
	if e.cursor == 0 {
		return
	}
	copy(e.line[e.cursor-1:], e.line[e.cursor:])
	e.line = e.line[:len(e.line)-1]
	e.cursor--
	e.redraw()
}

func (e *Editor) deleteForward() {
	if e.cursor >= len(e.line) {
		return
	}
	copy(e.line[e.cursor:], e.line[e.cursor+1:])
	e.line = e.line[:len(e.line)-1]
	e.redraw()
}

func (e *Editor) setLine(s string) {
	e.line = []rune(s)
	e.cursor = len(e.line)
}

// redraw repaints the whole prompt+line and repositions the cursor, the
// simplest correct strategy for a line editor that never has to worry
// about multi-row wrapping in the scenarios spec §8 describes.
func (e *Editor) redraw() {
	fmt.Fprintf(e.out, "\r\x1b[K%s%s", e.prompt, string(e.line))
	if back := len(e.line) - e.cursor; back > 0 {
		fmt.Fprintf(e.out, "\x1b[%dD", back)
	}
}

// readLineCooked is the non-terminal fallback (stdin redirected from a
// pipe or file while -i was still forced): no raw mode, no editing, just a
// buffered line read with the prompt written first.
func (e *Editor) readLineCooked() (string, error) {
	if e.prompt != "" {
		fmt.Fprint(e.out, e.prompt)
	}
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := e.in.Read(buf)
		if n == 0 {
			if err == io.EOF && len(line) > 0 {
				return string(line), nil
			}
			return "", err
		}
		if buf[0] == '\n' {
			return string(line), nil
		}
		line = append(line, buf[0])
	}
}
