// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package exec

import (
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/sush-shell/sush/internal/ast"
	"github.com/sush-shell/sush/internal/builtin"
	"github.com/sush-shell/sush/internal/redirect"
)

// execSimple runs one plain command: expand its words, apply its
// assignment prefix (locally, if a command follows; permanently, if not),
// then dispatch to a function, a builtin, or an external program in that
// order, matching the teacher's call/exec split (interp/runner.go's
// Runner.call then Runner.exec).
func (sh *Shell) execSimple(c *ast.Simple, assigns []*ast.Assign) int {
	cfg := sh.wordConfig()
	var words []string
	for _, w := range c.Words {
		fields, err := w.ExpandFields(cfg)
		if err != nil {
			fmt.Fprintln(sh.stderr, "sush:", err)
			return 1
		}
		words = append(words, fields...)
	}
	if len(words) == 0 {
		return sh.applyAssigns(assigns)
	}

	name := words[0]

	if sh.opts.XTrace {
		ps4 := sh.db.GetParam("PS4")
		if ps4 == "" {
			ps4 = "+ "
		}
		fmt.Fprintln(sh.stderr, ps4+strings.Join(words, " "))
	}

	if body, ok := sh.LookupFunc(name); ok {
		return sh.callFunc(name, body, words[1:], assigns)
	}

	if fn, ok := builtin.Lookup(name); ok {
		restore := sh.pushTempAssigns(assigns)
		defer restore()
		return fn(sh, words)
	}

	return sh.execExternal(words, assigns)
}

// pushTempAssigns applies assigns for the duration of one builtin/external
// call (spec's "NAME=value cmd" prefix is scoped to that command only),
// returning a closure that restores the previous values.
func (sh *Shell) pushTempAssigns(assigns []*ast.Assign) func() {
	if len(assigns) == 0 {
		return func() {}
	}
	type saved struct {
		name    string
		had     bool
		value   string
	}
	var prior []saved
	for _, a := range assigns {
		e := sh.db.Lookup(a.Name)
		if e != nil {
			prior = append(prior, saved{a.Name, true, e.String()})
		} else {
			prior = append(prior, saved{a.Name, false, ""})
		}
		sh.applyAssign(a)
	}
	return func() {
		for _, s := range prior {
			if s.had {
				sh.db.SetParam(s.name, s.value)
			} else {
				sh.db.Unset(s.name)
			}
		}
	}
}

// callFunc invokes a shell function: a new parameter layer and positional
// frame, the break/continue/return sentinel consumed on LoopReturn so it
// doesn't escape past the call the way bash's `return` is scoped to the
// innermost function.
func (sh *Shell) callFunc(name string, body *ast.Stmt, args []string, assigns []*ast.Assign) int {
	if sh.funcDepth >= maxFuncDepth {
		fmt.Fprintln(sh.stderr, "sush: function call stack too deep")
		return 1
	}
	sh.funcDepth++
	defer func() { sh.funcDepth-- }()

	restore := sh.pushTempAssigns(assigns)
	defer restore()

	sh.db.PushLayer()
	sh.db.PushParamFrame(append([]string{name}, args...))
	oldSig, oldN := sh.Loop()
	sh.SetLoop(builtin.LoopNone, 0)

	status := sh.execStmt(body)

	switch sig, n := sh.Loop(); sig {
	case builtin.LoopReturn:
		status = n
		sh.SetLoop(oldSig, oldN)
	case builtin.LoopExit:
		// `exit` must keep propagating past this call boundary, all the
		// way to the top-level Run loop, unlike `return`.
		status = n
	default:
		sh.SetLoop(oldSig, oldN)
	}
	sh.db.PopParamFrame()
	sh.db.PopLayer()
	return status
}

// execExternal resolves name via PATH and runs it as a real subprocess,
// in its own process group the way the teacher's handler_unix.go
// prepareCommand does, generalized to run synchronously in the foreground
// (background statements are handled by runBackground instead).
func (sh *Shell) execExternal(words []string, assigns []*ast.Assign) int {
	path, err := sh.LookPath(words[0])
	if err != nil {
		fmt.Fprintf(sh.stderr, "sush: %s: command not found\n", words[0])
		return 127
	}
	cmd := osexec.Command(path, words[1:]...)
	cmd.Args[0] = words[0]
	cmd.Dir = sh.dir
	cmd.Env = append(sh.buildEnv(), tempAssignStrings(sh, assigns)...)
	cmd.Stdin = sh.stdin
	cmd.Stdout = sh.stdout
	cmd.Stderr = sh.stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if sh.sig != nil {
		sh.sig.ResetForChild()
	}
	err = cmd.Start()
	if sh.sig != nil {
		sh.sig.RestoreParent()
	}
	if err != nil {
		fmt.Fprintf(sh.stderr, "sush: %s: %v\n", words[0], err)
		return 126
	}
	err = cmd.Wait()
	return mapStatusErr(err)
}

func tempAssignStrings(sh *Shell, assigns []*ast.Assign) []string {
	if len(assigns) == 0 {
		return nil
	}
	cfg := sh.wordConfig()
	out := make([]string, 0, len(assigns))
	for _, a := range assigns {
		if a.Value == nil {
			continue
		}
		v, err := a.Value.ExpandScalar(cfg)
		if err != nil {
			continue
		}
		out = append(out, a.Name+"="+v)
	}
	return out
}

// runBackground starts st without waiting for it. A single external
// command becomes a real job-table entry (spec C10) so `jobs`/`fg`/`bg`/
// `wait` can act on it; a backgrounded pipeline or compound statement
// (`a | b &`, `{ ...; } &`) runs to completion in a goroutine against a
// cloned Shell instead and is not visible to job control, a scope
// reduction documented in DESIGN.md.
func (sh *Shell) runBackground(st *ast.Stmt) {
	switch c := st.Cmd.(type) {
	case *ast.Simple:
		sh.backgroundSimple(c, st)
	case *ast.Pipeline:
		sh.backgroundPipeline(c, st)
	default:
		sub := sh.clone()
		go sub.execStmt(&ast.Stmt{Cmd: st.Cmd, Redirs: st.Redirs, Negated: st.Negated})
	}
}

func (sh *Shell) backgroundSimple(c *ast.Simple, st *ast.Stmt) {
	cfg := sh.wordConfig()
	var words []string
	for _, w := range c.Words {
		fields, err := w.ExpandFields(cfg)
		if err != nil {
			fmt.Fprintln(sh.stderr, "sush:", err)
			return
		}
		words = append(words, fields...)
	}
	if len(words) == 0 {
		return
	}
	fg := &ast.Stmt{Cmd: st.Cmd, Redirs: st.Redirs, Negated: st.Negated, Assigns: st.Assigns}
	if _, ok := sh.LookupFunc(words[0]); ok {
		sub := sh.clone()
		go sub.execStmt(fg)
		return
	}
	if _, ok := builtin.Lookup(words[0]); ok {
		sub := sh.clone()
		go sub.execStmt(fg)
		return
	}
	path, err := sh.LookPath(words[0])
	if err != nil {
		fmt.Fprintf(sh.stderr, "sush: %s: command not found\n", words[0])
		return
	}
	cmd := osexec.Command(path, words[1:]...)
	cmd.Args[0] = words[0]
	cmd.Dir = sh.dir
	cmd.Env = sh.buildEnv()
	cmd.Stdin = sh.stdin
	cmd.Stdout = sh.stdout
	cmd.Stderr = sh.stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if sh.sig != nil {
		sh.sig.ResetForChild()
	}
	err = cmd.Start()
	if sh.sig != nil {
		sh.sig.RestoreParent()
	}
	if err != nil {
		fmt.Fprintf(sh.stderr, "sush: %s: %v\n", words[0], err)
		return
	}
	// cmd.Wait is deliberately never called: reaping is left to
	// jobs.Table.Poll's own wait4(-1, WNOHANG), so a background process
	// and the job table never race to collect the same exit status.
	pid := cmd.Process.Pid
	sh.jobs.Add(pid, []int{pid}, strings.Join(words, " "))
	cmd.Process.Release()
}

func (sh *Shell) backgroundPipeline(p *ast.Pipeline, st *ast.Stmt) {
	sub := sh.clone()
	go sub.execPipeline(p)
}

// withRedirects expands st's redirect targets, swaps the Shell's stdio
// fields for the statement's duration, runs fn, then restores them. Unlike
// a real fd table, only fd 0/1/2 are field-backed: a redirect onto fd>=3
// opens its target but has no effect on a builtin, a compound command or
// an external program, which is started with only stdin/stdout/stderr.
func (sh *Shell) withRedirects(st *ast.Stmt, fn func() int) (int, error) {
	if len(st.Redirs) == 0 {
		return fn(), nil
	}
	cfg := sh.wordConfig()
	argWords := make([]string, len(st.Redirs))
	for i, r := range st.Redirs {
		if r.Word == nil {
			continue
		}
		v, err := r.Word.ExpandScalar(cfg)
		if err != nil {
			return 1, err
		}
		argWords[i] = v
	}
	files, opened, err := redirect.ResolveForChild(st.Redirs, argWords)
	if err != nil {
		return 1, err
	}
	oldIn, oldOut, oldErr := sh.stdin, sh.stdout, sh.stderr
	for _, cf := range files {
		switch {
		case cf.Close:
			setFD(sh, cf.FD, eofReader{}, io.Discard)
		case cf.File != nil:
			setFD(sh, cf.FD, cf.File, cf.File)
		default:
			r, w := getFD(sh, cf.DupFrom)
			setFD(sh, cf.FD, r, w)
		}
	}
	status := fn()
	sh.stdin, sh.stdout, sh.stderr = oldIn, oldOut, oldErr
	for _, f := range opened {
		f.Close()
	}
	return status, nil
}

func setFD(sh *Shell, fd int, r io.Reader, w io.Writer) {
	switch fd {
	case 0:
		sh.stdin = r
	case 1:
		sh.stdout = w
	case 2:
		sh.stderr = w
	}
}

func getFD(sh *Shell, fd int) (io.Reader, io.Writer) {
	switch fd {
	case 0:
		return sh.stdin, nil
	case 1:
		return nil, sh.stdout
	case 2:
		return nil, sh.stderr
	}
	return nil, nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// execPipeline runs each stage with its stdout piped into the next stage's
// stdin over a real OS pipe, each stage against its own cloned Shell
// (bash's default: every pipeline stage but the last runs in a subshell,
// and this interpreter gives every stage one since it has no `lastpipe`
// support). Grounded on the teacher's per-stage r.stmt dispatch
// (interp/runner.go's *syntax.BinaryCmd case), generalized from in-memory
// io.Reader swaps to real os.Pipe fds so an external program on either
// side of the pipe sees a real fd.
func (sh *Shell) execPipeline(p *ast.Pipeline) int {
	n := len(p.Stmts)
	if n == 1 {
		return sh.execStmt(p.Stmts[0])
	}
	stages := make([]*Shell, n)
	var pipes []*os.File
	prevRead := sh.stdin
	for i := 0; i < n; i++ {
		stages[i] = sh.clone()
		stages[i].stdin = prevRead
		if i < n-1 {
			pr, pw, err := os.Pipe()
			if err != nil {
				fmt.Fprintln(sh.stderr, "sush:", err)
				return 1
			}
			pipes = append(pipes, pr, pw)
			stages[i].stdout = pw
			if len(p.StderrIn) > i && p.StderrIn[i] {
				stages[i].stderr = pw
			}
			prevRead = pr
		} else {
			stages[i].stdout = sh.stdout
		}
	}

	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := range stages {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i] = stages[i].execStmt(p.Stmts[i])
			if pw, ok := stages[i].stdout.(*os.File); ok && i < n-1 {
				pw.Close()
			}
		}(i)
	}
	wg.Wait()
	for _, f := range pipes {
		f.Close()
	}

	status := statuses[n-1]
	if sh.opts.PipeFail {
		for _, s := range statuses {
			if s != 0 {
				status = s
			}
		}
	}
	return status
}
