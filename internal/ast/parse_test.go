// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sush-shell/sush/internal/word"
)

func mustParse(t *testing.T, text string) []*Stmt {
	t.Helper()
	stmts, err := Parse(text, nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return stmts
}

func TestParseSimple(t *testing.T) {
	stmts := mustParse(t, "echo hello world")
	if len(stmts) != 1 {
		t.Fatalf("want 1 stmt, got %d", len(stmts))
	}
	sp, ok := stmts[0].Cmd.(*Simple)
	if !ok {
		t.Fatalf("want *Simple, got %T", stmts[0].Cmd)
	}
	if len(sp.Words) != 3 || sp.Words[0].Raw != "echo" {
		t.Fatalf("unexpected words: %+v", sp.Words)
	}
}

func TestParseAssignPrefix(t *testing.T) {
	stmts := mustParse(t, "FOO=bar echo $FOO")
	sp := stmts[0]
	if len(sp.Assigns) != 1 || sp.Assigns[0].Name != "FOO" {
		t.Fatalf("unexpected assigns: %+v", sp.Assigns)
	}
	cmd := sp.Cmd.(*Simple)
	if len(cmd.Words) != 2 {
		t.Fatalf("unexpected words: %+v", cmd.Words)
	}
}

func TestParsePipeline(t *testing.T) {
	stmts := mustParse(t, "cat file | grep foo | wc -l")
	pl, ok := stmts[0].Cmd.(*Pipeline)
	if !ok {
		t.Fatalf("want *Pipeline, got %T", stmts[0].Cmd)
	}
	if len(pl.Stmts) != 3 {
		t.Fatalf("want 3 stages, got %d", len(pl.Stmts))
	}
}

func TestParseAndOr(t *testing.T) {
	stmts := mustParse(t, "true && echo ok || echo bad")
	lst, ok := stmts[0].Cmd.(*List)
	if !ok {
		t.Fatalf("want *List, got %T", stmts[0].Cmd)
	}
	if lst.Op != ListOr {
		t.Fatalf("want top-level ||, got %v", lst.Op)
	}
}

func TestParseIf(t *testing.T) {
	stmts := mustParse(t, "if true; then echo a; elif false; then echo b; else echo c; fi")
	ifc, ok := stmts[0].Cmd.(*If)
	if !ok {
		t.Fatalf("want *If, got %T", stmts[0].Cmd)
	}
	if len(ifc.Elifs) != 1 || len(ifc.Else) != 1 {
		t.Fatalf("unexpected shape: %+v", ifc)
	}
}

func TestParseWhile(t *testing.T) {
	stmts := mustParse(t, "while true; do echo x; done")
	w, ok := stmts[0].Cmd.(*While)
	if !ok || w.Until {
		t.Fatalf("want *While (not until), got %T", stmts[0].Cmd)
	}
}

func TestParseForIn(t *testing.T) {
	stmts := mustParse(t, "for x in a b c; do echo $x; done")
	f, ok := stmts[0].Cmd.(*For)
	if !ok || !f.HasIn || len(f.List) != 3 {
		t.Fatalf("unexpected shape: %#v", stmts[0].Cmd)
	}
}

func TestParseForC(t *testing.T) {
	stmts := mustParse(t, "for ((i=0; i<3; i++)); do echo $i; done")
	f, ok := stmts[0].Cmd.(*ForC)
	if !ok {
		t.Fatalf("want *ForC, got %T", stmts[0].Cmd)
	}
	if f.Init != "i=0" || f.Cond != "i<3" || f.Post != "i++" {
		t.Fatalf("unexpected header: %+v", f)
	}
}

func TestParseCase(t *testing.T) {
	stmts := mustParse(t, "case $x in a) echo A ;; b|c) echo BC ;; *) echo Z ;; esac")
	c, ok := stmts[0].Cmd.(*Case)
	if !ok {
		t.Fatalf("want *Case, got %T", stmts[0].Cmd)
	}
	if len(c.Items) != 3 || len(c.Items[1].Patterns) != 2 {
		t.Fatalf("unexpected items: %+v", c.Items)
	}
}

func TestParseBraceAndSubshell(t *testing.T) {
	stmts := mustParse(t, "{ echo a; echo b; }")
	if _, ok := stmts[0].Cmd.(*Brace); !ok {
		t.Fatalf("want *Brace, got %T", stmts[0].Cmd)
	}
	stmts = mustParse(t, "(echo a; echo b)")
	if _, ok := stmts[0].Cmd.(*Subshell); !ok {
		t.Fatalf("want *Subshell, got %T", stmts[0].Cmd)
	}
}

func TestParseFuncDecl(t *testing.T) {
	stmts := mustParse(t, "greet() { echo hi; }")
	fd, ok := stmts[0].Cmd.(*FuncDecl)
	if !ok || fd.Name != "greet" {
		t.Fatalf("unexpected: %+v", stmts[0].Cmd)
	}
}

func TestParseArithCommand(t *testing.T) {
	stmts := mustParse(t, "((x = 1 + 2))")
	a, ok := stmts[0].Cmd.(*Arith)
	if !ok {
		t.Fatalf("want *Arith, got %T", stmts[0].Cmd)
	}
	if a.Expr != "x = 1 + 2" {
		t.Fatalf("unexpected expr: %q", a.Expr)
	}
}

func TestParseTest(t *testing.T) {
	stmts := mustParse(t, "[[ -f foo.txt ]]")
	tst, ok := stmts[0].Cmd.(*Test)
	if !ok {
		t.Fatalf("want *Test, got %T", stmts[0].Cmd)
	}
	if len(tst.Words) != 2 {
		t.Fatalf("unexpected words: %+v", tst.Words)
	}
}

func TestParseRedirect(t *testing.T) {
	stmts := mustParse(t, "echo hi > out.txt 2>&1")
	sp := stmts[0]
	if len(sp.Redirs) != 2 {
		t.Fatalf("want 2 redirects, got %d: %+v", len(sp.Redirs), sp.Redirs)
	}
	if sp.Redirs[0].Op != RedirGreat {
		t.Fatalf("unexpected op: %v", sp.Redirs[0].Op)
	}
	if sp.Redirs[1].Op != RedirDupOut || !sp.Redirs[1].HasN || sp.Redirs[1].N != 2 {
		t.Fatalf("unexpected redirect: %+v", sp.Redirs[1])
	}
}

func TestParseHeredoc(t *testing.T) {
	stmts, err := Parse("cat <<EOF", []string{"line one\nline two"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sp := stmts[0]
	if len(sp.Redirs) != 1 || sp.Redirs[0].Op != RedirHeredoc {
		t.Fatalf("unexpected redirects: %+v", sp.Redirs)
	}
	if sp.Redirs[0].Hdoc != "line one\nline two" {
		t.Fatalf("unexpected heredoc body: %q", sp.Redirs[0].Hdoc)
	}
}

func TestParseIncompleteIf(t *testing.T) {
	_, err := Parse("if true; then echo a", nil)
	ie, ok := err.(*IncompleteError)
	if !ok {
		t.Fatalf("want *IncompleteError, got %v (%T)", err, err)
	}
	if ie.Want != "fi" {
		t.Fatalf("want waiting on fi, got %q", ie.Want)
	}
}

func TestParseIncompleteBrace(t *testing.T) {
	_, err := Parse("{ echo a", nil)
	if _, ok := err.(*IncompleteError); !ok {
		t.Fatalf("want *IncompleteError, got %v (%T)", err, err)
	}
}

// TestParseSimpleStructural checks the full *Stmt/*Simple/*word.Word tree
// against a literal expected value with cmp.Diff rather than picking out a
// few fields, so a stray change to word tokenization or to AtStart
// placement shows up as a readable tree diff instead of passing silently.
func TestParseSimpleStructural(t *testing.T) {
	got, err := Parse("echo a b", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []*Stmt{
		{
			Cmd: &Simple{
				Words: []*word.Word{
					{Raw: "echo", AtStart: true},
					{Raw: "a"},
					{Raw: "b"},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", "echo a b", diff)
	}
}
