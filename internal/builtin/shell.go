// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

// Package builtin implements C12: the contract and dispatch table for
// commands that run in the parent process rather than forking. Grounded on
// the teacher's ExecHandlerFunc/interp/builtin.go dispatch (a giant switch
// over syntax.CallExpr's first word), generalized into a name->Func table
// the way SPEC_FULL.md's "(core, args) -> int" contract describes, so the
// executor (internal/exec) can look a name up without a `switch` of its
// own and so tests can invoke one builtin without going through a parser.
package builtin

import (
	"io"

	"github.com/sush-shell/sush/internal/ast"
	"github.com/sush-shell/sush/internal/core"
	"github.com/sush-shell/sush/internal/jobs"
	"github.com/sush-shell/sush/internal/shopt"
)

// LoopSignal is the sentinel spec §4.6 describes for break/continue:
// "implemented as a sentinel stored in core.loop_break consulted after
// each statement."
type LoopSignal int

const (
	LoopNone LoopSignal = iota
	LoopBreak
	LoopContinue
	LoopReturn
	// LoopExit is `exit`'s sentinel: unlike LoopReturn, a function call
	// boundary must not consume it, so it keeps propagating up through
	// nested calls until it reaches the top-level statement runner.
	LoopExit
)

// Shell is everything a builtin needs from its host, kept narrow so this
// package never imports internal/exec (which imports this package to get
// the dispatch table, and would otherwise cycle).
type Shell interface {
	DB() *core.Database
	Opts() *shopt.Options

	Stdin() io.Reader
	Stdout() io.Writer
	Stderr() io.Writer

	Dir() string
	Chdir(path string) error

	// RunText parses and runs text as a new script in the current
	// environment, for `eval` and `source`/`.`. It returns the exit
	// status of the last command run.
	RunText(text string) int
	// RunFile does the same, reading from path (for `source`/`.`).
	RunFile(path string, args []string) (int, error)

	// Exec replaces the current process image (real exec(2) for a
	// foreground non-interactive invocation), or, when that is not
	// possible (interactive shell, or NAME not found), runs the
	// command as the last thing this statement list does.
	Exec(name string, args []string) int

	Jobs() *jobs.Table

	SetLoop(sig LoopSignal, n int)
	Loop() (LoopSignal, int)

	DefineFunc(name string, body *ast.Stmt)
	LookupFunc(name string) (*ast.Stmt, bool)
	DeleteFunc(name string)
	FuncNames() []string

	AliasSet(name, value string)
	AliasGet(name string) (string, bool)
	AliasUnset(name string)
	AliasNames() []string

	TrapSet(spec, action string)
	TrapGet(spec string) (string, bool)

	HashSet(name, path string)
	HashGet(name string) (string, bool)
	HashClear()

	LookPath(name string) (string, error)

	// PushDir/PopDir/DirStack back `pushd`/`popd`/`dirs`.
	PushDir(path string) error
	PopDir() (string, error)
	DirStack() []string
}

// Func is one builtin's entry point: spec §6's "(core, args) -> int"
// contract, args[0] being the builtin's own name.
type Func func(sh Shell, args []string) int

// Table maps builtin names to their implementation.
var Table = map[string]Func{
	":":        biColon,
	".":        biSource,
	"source":   biSource,
	"alias":    biAlias,
	"unalias":  biUnalias,
	"bg":       biBg,
	"fg":       biFg,
	"break":    biBreak,
	"continue": biContinue,
	"cd":       biCd,
	"command":  biCommand,
	"declare":  biDeclare,
	"typeset":  biDeclare,
	"echo":     biEcho,
	"eval":     biEval,
	"exec":     biExec,
	"exit":     biExit,
	"export":   biExport,
	"false":    biFalse,
	"getopts":  biGetopts,
	"hash":     biHash,
	"jobs":     biJobs,
	"kill":     biKill,
	"let":      biLet,
	"local":    biLocal,
	"popd":     biPopd,
	"printf":   biPrintf,
	"pushd":    biPushd,
	"dirs":     biDirs,
	"pwd":      biPwd,
	"read":     biRead,
	"readonly": biReadonly,
	"return":   biReturn,
	"set":      biSet,
	"shift":    biShift,
	"shopt":    biShopt,
	"test":     biTest,
	"[":        biTestBracket,
	"times":    biTimes,
	"trap":     biTrap,
	"true":     biTrue,
	"type":     biType,
	"umask":    biUmask,
	"unset":    biUnset,
	"wait":     biWait,
}

// Lookup returns the builtin for name, if any.
func Lookup(name string) (Func, bool) {
	f, ok := Table[name]
	return f, ok
}
