// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

// Package exec implements C9: the statement-tree walker that turns an
// internal/ast.Stmt into running processes and side effects on
// internal/core's parameter store. Grounded on the teacher's Runner
// (interp/runner.go) and its ExecHandlerFunc/DefaultExecHandler
// (interp/handler.go): the same command-resolution order (function table,
// then builtin table, then PATH lookup) and the same exit-status mapping
// from os/exec's *exec.ExitError, generalized from the teacher's pure
// interpreter (which only ever runs one external os/exec.Cmd per call and
// never backgrounds anything) to real forked subprocesses, pipelines and
// job control per SPEC_FULL.md.
package exec

import (
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/sush-shell/sush/internal/ast"
	"github.com/sush-shell/sush/internal/builtin"
	"github.com/sush-shell/sush/internal/core"
	"github.com/sush-shell/sush/internal/jobs"
	"github.com/sush-shell/sush/internal/shopt"
	"github.com/sush-shell/sush/internal/term"
	"github.com/sush-shell/sush/internal/word"
)

// Shell is one running instance of the interpreter: a parameter database,
// an option bag, a job table and the in-process stdio a statement tree
// currently reads and writes. A Shell cloned for a subshell or pipeline
// stage (see clone) shares nothing mutable with its parent except the job
// table, so parameter and directory changes inside a subshell never leak
// out (spec's "subshells run in a forked child environment" becomes, for
// subshells this interpreter never actually forks its own image for, an
// independent copy of the Database instead).
type Shell struct {
	db   *core.Database
	opts *shopt.Options
	jobs *jobs.Table

	funcs   map[string]*ast.Stmt
	aliases map[string]string
	traps   map[string]string
	hash    map[string]string

	dir      string
	dirStack []string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	loopSig builtin.LoopSignal
	loopN   int

	// sig is non-nil only for the top-level interactive Shell (set by
	// cmd/sush via SetSignals); a subshell/pipeline-stage clone leaves it
	// nil and simply skips the reset-for-child bracket, matching spec's
	// "Child (post-fork, before exec)" note applying only to real forked
	// children of the interactive parent, not to in-process clones that
	// never touch real signal dispositions.
	sig *term.ParentSignals

	// funcDepth guards against functions or `source` recursing forever.
	funcDepth int
}

// SetSignals wires the interactive parent's signal controller (see
// internal/term) so execExternal/backgroundSimple can bracket process
// spawns with the reset-for-child/restore-for-parent dance spec §4.10
// describes. Non-interactive shells never call this, leaving sh.sig nil.
func (sh *Shell) SetSignals(sig *term.ParentSignals) { sh.sig = sig }

const maxFuncDepth = 1000

// New returns a top-level Shell reading/writing the process's own stdio.
func New(argv0 string, args []string) *Shell {
	dir, _ := os.Getwd()
	return &Shell{
		db:      core.New(argv0, args),
		opts:    shopt.New(),
		jobs:    jobs.NewTable(),
		funcs:   map[string]*ast.Stmt{},
		aliases: map[string]string{},
		traps:   map[string]string{},
		hash:    map[string]string{},
		dir:     dir,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// clone returns an independent Shell for a subshell or command
// substitution: a deep copy of the Database so writes never escape, but
// the same job table (jobs started in a subshell are still this process's
// children) and the same function/alias/trap tables (read-mostly, copied
// so a subshell's `unset -f`/`alias` don't affect the parent).
func (sh *Shell) clone() *Shell {
	opts := *sh.opts
	s2 := &Shell{
		db:      sh.db.Clone(),
		opts:    &opts,
		jobs:    sh.jobs,
		dir:     sh.dir,
		stdin:   sh.stdin,
		stdout:  sh.stdout,
		stderr:  sh.stderr,
		sig:       sh.sig,
		funcDepth: sh.funcDepth,
	}
	s2.hash = make(map[string]string, len(sh.hash))
	for k, v := range sh.hash {
		s2.hash[k] = v
	}
	s2.funcs = make(map[string]*ast.Stmt, len(sh.funcs))
	for k, v := range sh.funcs {
		s2.funcs[k] = v
	}
	s2.aliases = make(map[string]string, len(sh.aliases))
	for k, v := range sh.aliases {
		s2.aliases[k] = v
	}
	s2.traps = make(map[string]string, len(sh.traps))
	for k, v := range sh.traps {
		s2.traps[k] = v
	}
	s2.dirStack = append([]string{}, sh.dirStack...)
	return s2
}

// --- builtin.Shell ---

func (sh *Shell) DB() *core.Database   { return sh.db }
func (sh *Shell) Opts() *shopt.Options { return sh.opts }

func (sh *Shell) Stdin() io.Reader  { return sh.stdin }
func (sh *Shell) Stdout() io.Writer { return sh.stdout }
func (sh *Shell) Stderr() io.Writer { return sh.stderr }

func (sh *Shell) Dir() string { return sh.dir }

func (sh *Shell) Chdir(path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(sh.dir, path)
	}
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	sh.db.SetParam("OLDPWD", sh.dir)
	sh.dir = path
	sh.db.SetParam("PWD", path)
	return nil
}

func (sh *Shell) RunText(text string) int {
	stmts, err := ast.Parse(text, nil)
	if err != nil {
		fmt.Fprintln(sh.stderr, "sush:", err)
		return 2
	}
	return sh.Run(stmts)
}

func (sh *Shell) RunFile(path string, args []string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 1, err
	}
	old := sh.db.Positional()
	if len(args) > 0 {
		sh.db.SetPositional(args)
	}
	status := sh.RunText(string(data))
	if len(args) > 0 {
		sh.db.SetPositional(old)
	}
	return status, nil
}

// Exec implements the `exec` builtin's command form: it replaces the
// current process image outright when that is possible, the way a real
// exec(2) would, and never returns on success.
func (sh *Shell) Exec(name string, args []string) int {
	path, err := sh.LookPath(name)
	if err != nil {
		fmt.Fprintf(sh.stderr, "sush: %s: command not found\n", name)
		return 127
	}
	env := sh.buildEnv()
	argv := append([]string{path}, args...)
	err = unix.Exec(path, argv, env)
	fmt.Fprintf(sh.stderr, "sush: %s: %v\n", name, err)
	return 126
}

func (sh *Shell) Jobs() *jobs.Table { return sh.jobs }

func (sh *Shell) SetLoop(sig builtin.LoopSignal, n int) { sh.loopSig, sh.loopN = sig, n }
func (sh *Shell) Loop() (builtin.LoopSignal, int)       { return sh.loopSig, sh.loopN }

func (sh *Shell) DefineFunc(name string, body *ast.Stmt) { sh.funcs[name] = body }
func (sh *Shell) LookupFunc(name string) (*ast.Stmt, bool) {
	s, ok := sh.funcs[name]
	return s, ok
}
func (sh *Shell) DeleteFunc(name string) { delete(sh.funcs, name) }
func (sh *Shell) FuncNames() []string {
	out := make([]string, 0, len(sh.funcs))
	for k := range sh.funcs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (sh *Shell) AliasSet(name, value string) { sh.aliases[name] = value }
func (sh *Shell) AliasGet(name string) (string, bool) {
	v, ok := sh.aliases[name]
	return v, ok
}
func (sh *Shell) AliasUnset(name string) { delete(sh.aliases, name) }
func (sh *Shell) AliasNames() []string {
	out := make([]string, 0, len(sh.aliases))
	for k := range sh.aliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (sh *Shell) TrapSet(spec, action string) { sh.traps[spec] = action }
func (sh *Shell) TrapGet(spec string) (string, bool) {
	v, ok := sh.traps[spec]
	return v, ok
}

func (sh *Shell) HashSet(name, path string)      { sh.hash[name] = path }
func (sh *Shell) HashGet(name string) (string, bool) {
	v, ok := sh.hash[name]
	return v, ok
}
func (sh *Shell) HashClear() { sh.hash = map[string]string{} }

func (sh *Shell) PushDir(path string) error {
	sh.dirStack = append(sh.dirStack, sh.dir)
	return sh.Chdir(path)
}

func (sh *Shell) PopDir() (string, error) {
	if len(sh.dirStack) == 0 {
		return "", fmt.Errorf("directory stack empty")
	}
	prev := sh.dirStack[len(sh.dirStack)-1]
	sh.dirStack = sh.dirStack[:len(sh.dirStack)-1]
	old := sh.dir
	if err := sh.Chdir(prev); err != nil {
		return "", err
	}
	return old, nil
}

func (sh *Shell) DirStack() []string {
	return append([]string{sh.dir}, sh.dirStack...)
}

// EvalArith lets internal/builtin's `let` reach arithmetic evaluation via
// a narrow type assertion, without internal/builtin importing either this
// package or internal/word (see its biLet).
func (sh *Shell) EvalArith(expr string) (int64, error) {
	return word.EvalArith(sh.wordConfig(), expr)
}

// --- environment / word-expansion plumbing ---

func (sh *Shell) wordConfig() *word.Config {
	return &word.Config{
		DB:         sh.db,
		Opts:       sh.opts,
		Dir:        sh.dir,
		CommandSub: sh.commandSub,
	}
}

// commandSub runs script in a cloned Shell with stdout captured to a
// buffer, the way the teacher's fillExpandConfig's CmdSubst callback
// clones a Runner and points its stdout at a string builder (interp's
// r.subshell(false) plus r2.stdout = w).
func (sh *Shell) commandSub(script string) (string, error) {
	sub := sh.clone()
	var buf strings.Builder
	sub.stdout = &buf
	stmts, err := ast.Parse(script, nil)
	if err != nil {
		return "", err
	}
	sub.Run(stmts)
	return strings.TrimRight(buf.String(), "\n"), nil
}

// buildEnv renders the exported parameters as a NAME=value slice for a
// spawned child, per spec's "environment... written: BASHPID, PPID, $0...".
func (sh *Shell) buildEnv() []string {
	env := append([]string{}, sh.db.Exported()...)
	env = append(env, "PWD="+sh.dir)
	return env
}

// --- path lookup ---

// LookPath resolves name to an executable path, honoring the `hash`
// builtin's cache the way bash does, and searching $PATH otherwise.
// Grounded on the teacher's LookPathDir (interp/handler.go).
func (sh *Shell) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, '/') {
		return checkExecutable(sh.resolvePath(name))
	}
	if p, ok := sh.hash[name]; ok {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		delete(sh.hash, name)
	}
	pathVar := sh.db.GetParam("PATH")
	for _, dir := range filepath.SplitList(pathVar) {
		if dir == "" {
			dir = "."
		}
		cand := filepath.Join(sh.resolvePath(dir), name)
		if p, err := checkExecutable(cand); err == nil {
			sh.hash[name] = p
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: not found", name)
}

func (sh *Shell) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(sh.dir, p)
}

func checkExecutable(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return "", fmt.Errorf("%s: permission denied", path)
	}
	return path, nil
}

// mapStatusErr converts the error from exec.Cmd.Wait/Run into bash's exit
// code convention (spec §4.8): Exited(s) -> s, Signaled(sig) -> 128+sig.
func mapStatusErr(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*osexec.ExitError); ok {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return ee.ExitCode()
	}
	return 1
}
