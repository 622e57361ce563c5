// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package builtin

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/sush-shell/sush/internal/ast"
	"github.com/sush-shell/sush/internal/core"
	"github.com/sush-shell/sush/internal/jobs"
	"github.com/sush-shell/sush/internal/shopt"
)

// fakeShell is a minimal Shell implementation for exercising builtins in
// isolation, without internal/exec's process-spawning machinery.
type fakeShell struct {
	db      *core.Database
	opts    *shopt.Options
	in      *strings.Reader
	out     bytes.Buffer
	errOut  bytes.Buffer
	dir     string
	jobsTbl *jobs.Table
	funcs   map[string]*ast.Stmt
	aliases map[string]string
	traps   map[string]string
}

func newFakeShell(stdin string) *fakeShell {
	return &fakeShell{
		db:      core.New("sush", nil),
		opts:    shopt.New(),
		in:      strings.NewReader(stdin),
		dir:     "/tmp",
		jobsTbl: jobs.NewTable(),
		funcs:   map[string]*ast.Stmt{},
		aliases: map[string]string{},
		traps:   map[string]string{},
	}
}

func (f *fakeShell) DB() *core.Database     { return f.db }
func (f *fakeShell) Opts() *shopt.Options   { return f.opts }
func (f *fakeShell) Stdin() io.Reader {
	return f.in
}
func (f *fakeShell) Stdout() io.Writer {
	return &f.out
}
func (f *fakeShell) Stderr() io.Writer {
	return &f.errOut
}
func (f *fakeShell) Dir() string            { return f.dir }
func (f *fakeShell) Chdir(path string) error { f.dir = path; return nil }
func (f *fakeShell) RunText(text string) int { return 0 }
func (f *fakeShell) RunFile(path string, args []string) (int, error) {
	return 0, errors.New("not implemented")
}
func (f *fakeShell) Exec(name string, args []string) int { return 0 }
func (f *fakeShell) Jobs() *jobs.Table                    { return f.jobsTbl }

var loopSig LoopSignal
var loopN int

func (f *fakeShell) SetLoop(sig LoopSignal, n int) { loopSig, loopN = sig, n }
func (f *fakeShell) Loop() (LoopSignal, int)       { return loopSig, loopN }

func (f *fakeShell) DefineFunc(name string, body *ast.Stmt) { f.funcs[name] = body }
func (f *fakeShell) LookupFunc(name string) (*ast.Stmt, bool) {
	s, ok := f.funcs[name]
	return s, ok
}
func (f *fakeShell) DeleteFunc(name string) { delete(f.funcs, name) }
func (f *fakeShell) FuncNames() []string {
	var out []string
	for k := range f.funcs {
		out = append(out, k)
	}
	return out
}

func (f *fakeShell) AliasSet(name, value string) { f.aliases[name] = value }
func (f *fakeShell) AliasGet(name string) (string, bool) {
	v, ok := f.aliases[name]
	return v, ok
}
func (f *fakeShell) AliasUnset(name string) { delete(f.aliases, name) }
func (f *fakeShell) AliasNames() []string {
	var out []string
	for k := range f.aliases {
		out = append(out, k)
	}
	return out
}

func (f *fakeShell) TrapSet(spec, action string) { f.traps[spec] = action }
func (f *fakeShell) TrapGet(spec string) (string, bool) {
	v, ok := f.traps[spec]
	return v, ok
}

func (f *fakeShell) HashSet(name, path string)      {}
func (f *fakeShell) HashGet(name string) (string, bool) { return "", false }
func (f *fakeShell) HashClear()                     {}
func (f *fakeShell) LookPath(name string) (string, error) {
	return "", errors.New("not found")
}
func (f *fakeShell) PushDir(path string) error    { return nil }
func (f *fakeShell) PopDir() (string, error)      { return f.dir, nil }
func (f *fakeShell) DirStack() []string           { return []string{f.dir} }

func TestEchoDefault(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("")
	biEcho(sh, []string{"echo", "hello", "world"})
	c.Assert(sh.out.String(), qt.Equals, "hello world\n")
}

func TestEchoNoNewline(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("")
	biEcho(sh, []string{"echo", "-n", "hi"})
	c.Assert(sh.out.String(), qt.Equals, "hi")
}

func TestEchoEscapes(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("")
	biEcho(sh, []string{"echo", "-e", `a\tb\nc`})
	c.Assert(sh.out.String(), qt.Equals, "a\tb\nc\n")
}

func TestTrueFalse(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("")
	c.Assert(biTrue(sh, []string{"true"}), qt.Equals, 0)
	c.Assert(biFalse(sh, []string{"false"}), qt.Equals, 1)
}

func TestTestStringOps(t *testing.T) {
	c := qt.New(t)
	c.Assert(evalTest([]string{"-z", ""}), qt.Equals, 0)
	c.Assert(evalTest([]string{"-n", "x"}), qt.Equals, 0)
	c.Assert(evalTest([]string{"foo", "=", "foo"}), qt.Equals, 0)
	c.Assert(evalTest([]string{"foo", "!=", "bar"}), qt.Equals, 0)
	c.Assert(evalTest([]string{"3", "-lt", "5"}), qt.Equals, 0)
	c.Assert(evalTest([]string{"5", "-lt", "3"}), qt.Equals, 1)
}

func TestTestBracket(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("")
	c.Assert(biTestBracket(sh, []string{"[", "1", "-eq", "1", "]"}), qt.Equals, 0)
}

func TestPrintfBasic(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("")
	biPrintf(sh, []string{"printf", "%s-%d\n", "hi", "42"})
	c.Assert(sh.out.String(), qt.Equals, "hi-42\n")
}

func TestExportAndReadonly(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("")
	biExport(sh, []string{"export", "FOO=bar"})
	c.Assert(sh.db.Exported(), qt.DeepEquals, []string{"FOO=bar"})
	status := biReadonly(sh, []string{"readonly", "BAR=baz"})
	c.Assert(status, qt.Equals, 0)
	status = biReadonly(sh, []string{"readonly", "BAR=qux"})
	c.Assert(status, qt.Not(qt.Equals), 0)
}

func TestShiftAndPositional(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("")
	sh.db.SetPositional([]string{"a", "b", "c"})
	c.Assert(biShift(sh, []string{"shift"}), qt.Equals, 0)
	c.Assert(sh.db.Positional(), qt.DeepEquals, []string{"b", "c"})
}

func TestReadSplitsFields(t *testing.T) {
	c := qt.New(t)
	sh := newFakeShell("one two three\n")
	biRead(sh, []string{"read", "a", "b", "c"})
	c.Assert(sh.db.GetParam("a"), qt.Equals, "one")
	c.Assert(sh.db.GetParam("b"), qt.Equals, "two")
	c.Assert(sh.db.GetParam("c"), qt.Equals, "three")
}
