// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package exec

import (
	"fmt"

	"github.com/sush-shell/sush/internal/ast"
	"github.com/sush-shell/sush/internal/builtin"
	"github.com/sush-shell/sush/internal/core"
	"github.com/sush-shell/sush/internal/word"
)

// Run executes a parsed statement list top to bottom and returns the exit
// status of the last statement run, the way a script's overall status is
// the status of its last command.
func (sh *Shell) Run(stmts []*ast.Stmt) int {
	status := 0
	for _, st := range stmts {
		status = sh.execStmt(st)
		if sh.opts.ErrExit && status != 0 {
			break
		}
		if sig, _ := sh.Loop(); sig != builtin.LoopNone {
			break
		}
	}
	sh.db.SetExitStatus(status)
	return status
}

// runBody is Run without the top-level errexit short-circuit, for loop and
// conditional bodies that must run to completion so break/continue/return
// sentinels are observed by their enclosing construct.
func (sh *Shell) runBody(stmts []*ast.Stmt) int {
	status := 0
	for _, st := range stmts {
		status = sh.execStmt(st)
		if sig, _ := sh.Loop(); sig != builtin.LoopNone {
			break
		}
	}
	return status
}

func (sh *Shell) execStmt(st *ast.Stmt) int {
	if len(st.Assigns) > 0 && isBareAssign(st) {
		return sh.applyAssigns(st.Assigns)
	}

	if st.Background {
		sh.runBackground(st)
		return 0
	}

	status, err := sh.withRedirects(st, func() int {
		return sh.execCommand(st.Cmd, st.Assigns)
	})
	if err != nil {
		fmt.Fprintln(sh.stderr, "sush:", err)
		status = 1
	}
	if st.Negated {
		if status == 0 {
			status = 1
		} else {
			status = 0
		}
	}
	sh.db.SetExitStatus(status)
	return status
}

// isBareAssign reports whether st is nothing but a leading-assignment
// prefix with no command word, e.g. `FOO=bar` on its own.
func isBareAssign(st *ast.Stmt) bool {
	simple, ok := st.Cmd.(*ast.Simple)
	return ok && len(simple.Words) == 0
}

func (sh *Shell) applyAssigns(assigns []*ast.Assign) int {
	for _, a := range assigns {
		if err := sh.applyAssign(a); err != nil {
			fmt.Fprintln(sh.stderr, "sush:", err)
			return 1
		}
	}
	return 0
}

func (sh *Shell) applyAssign(a *ast.Assign) error {
	cfg := sh.wordConfig()
	if len(a.Elems) > 0 {
		vals := make([]string, 0, len(a.Elems))
		for _, w := range a.Elems {
			fields, err := w.ExpandFields(cfg)
			if err != nil {
				return err
			}
			vals = append(vals, fields...)
		}
		return sh.db.SetArray(a.Name, vals)
	}
	value := ""
	if a.Value != nil {
		v, err := a.Value.ExpandScalar(cfg)
		if err != nil {
			return err
		}
		value = v
	}
	switch {
	case a.Index != nil:
		idxStr, err := a.Index.ExpandScalar(cfg)
		if err != nil {
			return err
		}
		if e := sh.db.Lookup(a.Name); e != nil && e.Kind == core.KindAssocArray {
			return sh.db.SetAssocElem(a.Name, value, idxStr)
		}
		n, err := word.EvalArith(cfg, idxStr)
		if err != nil {
			return err
		}
		return sh.db.SetArrayElem(a.Name, value, int(n))
	case a.AssocKey != nil:
		key, err := a.AssocKey.ExpandScalar(cfg)
		if err != nil {
			return err
		}
		return sh.db.SetAssocElem(a.Name, value, key)
	case a.Append:
		return sh.db.SetParam(a.Name, sh.db.GetParam(a.Name)+value)
	default:
		return sh.db.SetParam(a.Name, value)
	}
}

func (sh *Shell) execCommand(cmd ast.Command, assigns []*ast.Assign) int {
	switch c := cmd.(type) {
	case *ast.Simple:
		return sh.execSimple(c, assigns)
	case *ast.Pipeline:
		return sh.execPipeline(c)
	case *ast.List:
		return sh.execList(c)
	case *ast.If:
		return sh.execIf(c)
	case *ast.While:
		return sh.execWhile(c)
	case *ast.For:
		return sh.execFor(c)
	case *ast.ForC:
		return sh.execForC(c)
	case *ast.Case:
		return sh.execCase(c)
	case *ast.Brace:
		return sh.runBody(c.Stmts)
	case *ast.Subshell:
		sub := sh.clone()
		return sub.runBody(c.Stmts)
	case *ast.FuncDecl:
		sh.DefineFunc(c.Name, c.Body)
		return 0
	case *ast.Arith:
		n, err := word.EvalArith(sh.wordConfig(), c.Expr)
		if err != nil {
			fmt.Fprintln(sh.stderr, "sush:", err)
			return 1
		}
		if n == 0 {
			return 1
		}
		return 0
	case *ast.Test:
		return sh.execTest(c)
	default:
		fmt.Fprintf(sh.stderr, "sush: unhandled command %T\n", cmd)
		return 1
	}
}

func (sh *Shell) execList(l *ast.List) int {
	left := sh.execStmt(l.Left)
	switch l.Op {
	case ast.ListAnd:
		if left != 0 {
			return left
		}
	case ast.ListOr:
		if left == 0 {
			return left
		}
	}
	if sig, _ := sh.Loop(); sig != builtin.LoopNone {
		return left
	}
	return sh.execStmt(l.Right)
}

func (sh *Shell) execIf(n *ast.If) int {
	if sh.runBody(n.Cond) == 0 {
		return sh.runBody(n.Then)
	}
	for _, e := range n.Elifs {
		if sh.runBody(e.Cond) == 0 {
			return sh.runBody(e.Then)
		}
	}
	if n.Else != nil {
		return sh.runBody(n.Else)
	}
	return 0
}

// loopOutcome inspects the break/continue/return sentinel after one pass
// through a loop body and reports whether the loop should stop.
func (sh *Shell) loopOutcome() (stop bool) {
	sig, n := sh.Loop()
	switch sig {
	case builtin.LoopBreak:
		if n <= 1 {
			sh.SetLoop(builtin.LoopNone, 0)
		} else {
			sh.SetLoop(builtin.LoopBreak, n-1)
		}
		return true
	case builtin.LoopContinue:
		if n <= 1 {
			sh.SetLoop(builtin.LoopNone, 0)
			return false
		}
		sh.SetLoop(builtin.LoopContinue, n-1)
		return true
	case builtin.LoopReturn:
		return true
	case builtin.LoopExit:
		return true
	}
	return false
}

func (sh *Shell) execWhile(n *ast.While) int {
	status := 0
	for {
		cond := sh.runBody(n.Cond) == 0
		if n.Until {
			cond = !cond
		}
		if !cond {
			break
		}
		status = sh.runBody(n.Body)
		if sh.loopOutcome() {
			break
		}
	}
	return status
}

func (sh *Shell) execFor(n *ast.For) int {
	cfg := sh.wordConfig()
	var items []string
	if n.HasIn {
		for _, w := range n.List {
			fields, err := w.ExpandFields(cfg)
			if err != nil {
				fmt.Fprintln(sh.stderr, "sush:", err)
				return 1
			}
			items = append(items, fields...)
		}
	} else {
		items = sh.db.Positional()
	}
	status := 0
	for _, v := range items {
		sh.db.SetParam(n.Name, v)
		status = sh.runBody(n.Body)
		if sh.loopOutcome() {
			break
		}
	}
	return status
}

func (sh *Shell) execForC(n *ast.ForC) int {
	cfg := sh.wordConfig()
	if n.Init != "" {
		if _, err := word.EvalArith(cfg, n.Init); err != nil {
			fmt.Fprintln(sh.stderr, "sush:", err)
			return 1
		}
	}
	status := 0
	for {
		if n.Cond != "" {
			v, err := word.EvalArith(cfg, n.Cond)
			if err != nil {
				fmt.Fprintln(sh.stderr, "sush:", err)
				return 1
			}
			if v == 0 {
				break
			}
		}
		status = sh.runBody(n.Body)
		if sh.loopOutcome() {
			break
		}
		if n.Post != "" {
			if _, err := word.EvalArith(cfg, n.Post); err != nil {
				fmt.Fprintln(sh.stderr, "sush:", err)
				return 1
			}
		}
	}
	return status
}

func (sh *Shell) execCase(n *ast.Case) int {
	cfg := sh.wordConfig()
	subject, err := n.Word.ExpandScalar(cfg)
	if err != nil {
		fmt.Fprintln(sh.stderr, "sush:", err)
		return 1
	}
	for i := 0; i < len(n.Items); i++ {
		item := n.Items[i]
		if !sh.caseMatches(item, subject, cfg) {
			continue
		}
		status := sh.runBody(item.Body)
		if item.Fallthru && i+1 < len(n.Items) {
			return sh.runCaseFrom(n, i+1, subject, cfg, true)
		}
		if item.TestNext && i+1 < len(n.Items) {
			return sh.runCaseFrom(n, i+1, subject, cfg, false)
		}
		return status
	}
	return 0
}

func (sh *Shell) runCaseFrom(n *ast.Case, start int, subject string, cfg *word.Config, force bool) int {
	item := n.Items[start]
	if force || sh.caseMatches(item, subject, cfg) {
		status := sh.runBody(item.Body)
		if item.Fallthru && start+1 < len(n.Items) {
			return sh.runCaseFrom(n, start+1, subject, cfg, true)
		}
		if item.TestNext && start+1 < len(n.Items) {
			return sh.runCaseFrom(n, start+1, subject, cfg, false)
		}
		return status
	}
	return 0
}

func (sh *Shell) caseMatches(item ast.CasePattern, subject string, cfg *word.Config) bool {
	for _, p := range item.Patterns {
		pat, err := p.ExpandScalar(cfg)
		if err != nil {
			continue
		}
		if word.MatchPattern(pat, subject, sh.opts.ExtGlob, sh.opts.NoCaseGlob) {
			return true
		}
	}
	return false
}

func (sh *Shell) execTest(n *ast.Test) int {
	cfg := sh.wordConfig()
	args := make([]string, 0, len(n.Words))
	for _, w := range n.Words {
		v, err := w.ExpandScalar(cfg)
		if err != nil {
			fmt.Fprintln(sh.stderr, "sush:", err)
			return 2
		}
		args = append(args, v)
	}
	return builtin.EvalTestWords(args)
}
